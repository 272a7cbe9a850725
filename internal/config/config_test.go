package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAndValidate_FillsDefaults(t *testing.T) {
	var cfg Config
	cfg.App.Port = 8080

	out, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK())

	def := DefaultRules()
	assert.Equal(t, def.FreeEmailDomains, out.Rules.FreeEmailDomains)
	assert.Equal(t, def.Misspellings, out.Rules.Misspellings)
	assert.Equal(t, def.LegitimacyWords, out.Rules.LegitimacyWords)
	assert.Equal(t, def.SalaryBands, out.Rules.SalaryBands)
	for _, cat := range KeywordCategories {
		assert.Equal(t, def.Keywords[cat], out.Rules.Keywords[cat], "category %s", cat)
	}
}

func TestNormalizeAndValidate_LowercasesAndDedupes(t *testing.T) {
	var cfg Config
	cfg.Rules.FreeEmailDomains = []string{" GMail.com ", "gmail.com", "", "Yahoo.COM"}

	out, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"gmail.com", "yahoo.com"}, out.Rules.FreeEmailDomains)
}

func TestNormalizeAndValidate_BadBand(t *testing.T) {
	var cfg Config
	cfg.Rules.SalaryBands = map[string]SalaryBand{
		BandInternship: {Min: 100, Max: 50},
	}

	_, res := NormalizeAndValidate(cfg)
	require.False(t, res.OK())
	assert.Contains(t, res.Errors[0], "salary_bands.internship")
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	// A hand-edited band with min > max would make both salary rules
	// fire on the same posting; loading must fail instead.
	path := filepath.Join(t.TempDir(), "config.yml")
	bad := "app:\n  port: 8080\nrules:\n  salary_bands:\n    internship:\n      min: 100000\n      max: 50000\n"
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salary_bands.internship")
	assert.Contains(t, err.Error(), "max must be > min")
}

func TestNormalizeAndValidate_UnknownCategoryWarns(t *testing.T) {
	var cfg Config
	cfg.Rules.Keywords = map[string][]string{"crypto": {"bitcoin"}}

	_, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "crypto")
}

func TestNormalizeAndValidate_IntakeRequiredFields(t *testing.T) {
	var cfg Config
	cfg.Intake.Enabled = true

	_, res := NormalizeAndValidate(cfg)
	require.False(t, res.OK())
	assert.Contains(t, res.Errors, "intake.imap_host is required when intake.enabled=true")
	assert.Contains(t, res.Errors, "intake.username is required when intake.enabled=true")
}

func TestSaveAtomicAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	var cfg Config
	cfg.App.Port = 9090
	cfg.Rules = DefaultRules()
	require.NoError(t, SaveAtomic(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, loaded.App.Port)
	assert.Equal(t, cfg.Rules.FreeEmailDomains, loaded.Rules.FreeEmailDomains)
	assert.Equal(t, cfg.Rules.SalaryBands, loaded.Rules.SalaryBands)

	// second save keeps the previous file as .bak
	cfg.App.Port = 9191
	require.NoError(t, SaveAtomic(path, cfg))
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestSaveAtomic_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	var cfg Config
	cfg.App.Port = -1
	err := SaveAtomic(path, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.port")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnsureUserConfig_SeedsOnce(t *testing.T) {
	dir := t.TempDir()
	shipped := filepath.Join(dir, "shipped.yml")
	require.NoError(t, os.WriteFile(shipped, []byte("app:\n  port: 8080\n"), 0o644))

	dataDir := t.TempDir()
	userPath, err := EnsureUserConfig(dataDir, shipped)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), userPath)

	// user edits survive a second bootstrap
	require.NoError(t, os.WriteFile(userPath, []byte("app:\n  port: 1234\n"), 0o644))
	again, err := EnsureUserConfig(dataDir, shipped)
	require.NoError(t, err)
	assert.Equal(t, userPath, again)

	b, err := os.ReadFile(userPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "1234")
}
