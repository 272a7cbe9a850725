package intake

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobshield-engine/internal/domain"
)

var (
	reURL        = regexp.MustCompile(`https?://[^\s<>"']+`)
	reSubjPrefix = regexp.MustCompile(`(?i)^(fwd?|fw|re)\s*:\s*`)
	reSalaryLine = regexp.MustCompile(`(?im)^.*\b(salary|stipend|ctc|package|compensation)\b.*$`)
)

// PostingFromMessage turns one mailbox message into an analyzable
// posting: sender name/domain become the company, the subject becomes
// the title and the decoded body becomes the description. Returns an
// error when the message lacks a usable sender or body.
func PostingFromMessage(m Message) (domain.Posting, error) {
	addr := strings.ToLower(strings.TrimSpace(m.FromAddr))
	if addr == "" || !strings.Contains(addr, "@") {
		return domain.Posting{}, errors.New("message has no usable From address")
	}

	plain, htmlPart, subject := bodyParts(m.Raw, m.Subject)

	body := strings.TrimSpace(plain)
	if body == "" && htmlPart != "" {
		body = htmlToText(htmlPart)
	}
	if body == "" {
		return domain.Posting{}, errors.New("message has no text body")
	}

	title := strings.TrimSpace(decodeRFC2047(subject))
	for reSubjPrefix.MatchString(title) {
		title = reSubjPrefix.ReplaceAllString(title, "")
	}
	if title == "" {
		title = "Unknown Role"
	}

	company := strings.TrimSpace(m.FromName)
	if company == "" {
		// fall back to the domain label: hr@acme-corp.com -> acme-corp
		_, dom, _ := strings.Cut(addr, "@")
		company, _, _ = strings.Cut(dom, ".")
	}
	if company == "" {
		company = "Unknown Company"
	}

	p := domain.Posting{
		CompanyName: company,
		JobTitle:    title,
		Description: body,
		Email:       addr,
		Website:     firstWebsite(body),
	}

	if ln := reSalaryLine.FindString(body); ln != "" {
		p.Salary = strings.TrimSpace(ln)
	}
	return p, nil
}

func firstWebsite(body string) string {
	for _, u := range reURL.FindAllString(body, 5) {
		u = strings.TrimRight(u, ".,);:]\"'")
		if !strings.Contains(strings.ToLower(u), "unsubscribe") {
			return u
		}
	}
	return ""
}

// htmlToText renders an HTML body as plain text.
func htmlToText(src string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return src
	}
	doc.Find("script,style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// bodyParts parses raw RFC822 bytes and returns the best text/plain and
// text/html parts plus the subject (header wins over the envelope
// fallback).
func bodyParts(raw []byte, fallbackSubject string) (plain, htmlPart, subject string) {
	subject = fallbackSubject
	if len(raw) == 0 {
		return "", "", subject
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return string(raw), "", subject
	}
	if s := strings.TrimSpace(msg.Header.Get("Subject")); s != "" {
		subject = s
	}

	body, _ := io.ReadAll(io.LimitReader(msg.Body, 6<<20))
	plain, htmlPart = mimeTextParts(msg.Header, body)
	if plain == "" && htmlPart == "" {
		plain = string(body)
	}
	return plain, htmlPart, subject
}

func mimeTextParts(h mail.Header, body []byte) (plain, htmlPart string) {
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return string(decodeCTE(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeCTE(body, cte)), ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)

		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			partCTE := strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding")))
			pMedia, _, _ := mime.ParseMediaType(p.Header.Get("Content-Type"))
			pMedia = strings.ToLower(pMedia)

			b, _ := io.ReadAll(io.LimitReader(p, 6<<20))
			b = decodeCTE(b, partCTE)

			if strings.HasPrefix(pMedia, "multipart/") {
				pl, ht := mimeTextParts(mail.Header(p.Header), b)
				if len(pl) > len(plain) {
					plain = pl
				}
				if len(ht) > len(htmlPart) {
					htmlPart = ht
				}
				continue
			}

			switch {
			case strings.HasPrefix(pMedia, "text/plain"):
				if len(b) > len(plain) {
					plain = string(b)
				}
			case strings.HasPrefix(pMedia, "text/html"):
				if len(b) > len(htmlPart) {
					htmlPart = string(b)
				}
			}
		}
		return plain, htmlPart
	}

	s := decodeCTE(body, cte)
	if strings.HasPrefix(mediaType, "text/html") {
		return "", string(s)
	}
	return string(s), ""
}

func decodeCTE(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	default:
		return b
	}
}

func decodeRFC2047(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	out, err := new(mime.WordDecoder).DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}
