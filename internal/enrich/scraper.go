// Package enrich fetches a lead's company website and condenses it into a
// WebsiteSummary for the detailed prompt.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/html"

	"github.com/harrison/delegate/internal/logger"
	"github.com/harrison/delegate/internal/models"
)

const (
	DefaultTimeout    = 8 * time.Second
	DefaultMaxContent = 8000

	maxBodyBytes  = 2 << 20
	maxHeadings   = 10
	maxParagraphs = 10
	userAgent     = "Mozilla/5.0 (compatible; DelegateReportBot/1.0)"
)

// ErrBlockedAddress is returned when a website resolves to a loopback,
// private, link-local or otherwise non-public address.
var ErrBlockedAddress = errors.New("refusing to fetch non-public address")

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598).
var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// Scraper is a best-effort website fetcher. It implements the
// orchestrator's Enricher.
type Scraper struct {
	client     *http.Client
	timeout    time.Duration
	maxContent int
	logger     logger.Logger

	// urlFor maps a bare domain to the URL fetched for it.
	urlFor func(domain string) string
}

// NewScraper creates a Scraper. Zero timeout or maxContent take the defaults.
func NewScraper(timeout time.Duration, maxContent int, l logger.Logger) *Scraper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxContent <= 0 {
		maxContent = DefaultMaxContent
	}
	return &Scraper{
		client:     newPublicClient(),
		timeout:    timeout,
		maxContent: maxContent,
		logger:     logger.OrNop(l),
		urlFor:     func(domain string) string { return "https://" + domain },
	}
}

// Enrich resolves the lead's website, from its website field or else its
// business email domain, and scrapes it. A lead with nothing to scrape
// yields (nil, nil).
func (s *Scraper) Enrich(ctx context.Context, lead models.LeadContext) (*models.WebsiteSummary, error) {
	target := strings.TrimSpace(lead.WebsiteURL())
	if target == "" {
		domain, ok := DomainFromEmail(lead.Email)
		if !ok {
			s.logger.LogDebug(logger.KV("no business domain to enrich", "email", lead.Email))
			return nil, nil
		}
		target = s.urlFor(domain)
	} else if !strings.Contains(target, "://") {
		target = s.urlFor(target)
	}
	return s.Scrape(ctx, target)
}

// newPublicClient returns a client that only connects to public addresses.
// The check runs on every dial, so redirects and DNS answers are covered.
func newPublicClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: DefaultTimeout,
		Control: func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || !IsPublicIP(ip) {
				return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
			}
			return nil
		},
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: DefaultTimeout,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
		},
	}
}

// IsPublicIP reports whether ip is a globally routable unicast address.
func IsPublicIP(ip net.IP) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	case sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

// checkTarget accepts absolute http and https URLs only.
func checkTarget(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid website %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid website %q: scheme must be http or https", raw)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("invalid website %q: missing host", raw)
	}
	return nil
}

// Scrape fetches url within the scraper timeout and extracts its title,
// meta description, leading headings and paragraphs. Only http and https
// URLs on public addresses are fetched.
func (s *Scraper) Scrape(ctx context.Context, url string) (*models.WebsiteSummary, error) {
	if err := checkTarget(url); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: HTTP %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	page := extractPage(doc)
	summary := &models.WebsiteSummary{
		URL:         url,
		Title:       page.title,
		Description: page.description,
		Content:     truncateRunes(page.render(url), s.maxContent),
	}

	s.logger.LogDebug(logger.KV("scraped website",
		"url", url,
		"chars", len(summary.Content),
		"duration", time.Since(start).Round(time.Millisecond)))
	return summary, nil
}

type page struct {
	title       string
	description string
	headings    []string
	paragraphs  []string
}

func extractPage(doc *html.Node) page {
	var p page
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "svg", "iframe", "template":
				return
			case "title":
				if p.title == "" {
					p.title = nodeText(n)
				}
				return
			case "meta":
				if strings.EqualFold(attr(n, "name"), "description") && p.description == "" {
					p.description = strings.TrimSpace(attr(n, "content"))
				}
			case "h1", "h2", "h3":
				if text := nodeText(n); len(text) > 3 && len(p.headings) < maxHeadings {
					p.headings = append(p.headings, text)
				}
				return
			case "p":
				if text := nodeText(n); len(text) > 20 && len(p.paragraphs) < maxParagraphs {
					p.paragraphs = append(p.paragraphs, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return p
}

func (p page) render(url string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "URL: %s\n", url)
	fmt.Fprintf(&sb, "Title: %s\n", p.title)
	fmt.Fprintf(&sb, "Description: %s\n", p.description)
	if len(p.headings) > 0 {
		sb.WriteString("\nHeadings:\n")
		sb.WriteString(strings.Join(p.headings, "\n"))
		sb.WriteString("\n")
	}
	if len(p.paragraphs) > 0 {
		sb.WriteString("\nContent:\n")
		sb.WriteString(strings.Join(p.paragraphs, "\n\n"))
	}
	return strings.TrimSpace(sb.String())
}

// nodeText returns the whitespace-collapsed text under n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
