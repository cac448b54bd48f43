// Package extractor turns a Wikipedia article page into the structured,
// bounded-length text document the quiz generator prompts with.
package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"wiki-quiz/internal/domain"
)

const (
	userAgent    = "AIWikiQuizGenerator/1.0 (+https://github.com/deep-klarity/ai-wiki-quiz-generator)"
	defaultTitle = "Wikipedia Article"

	summarySentences = 2
	maxFacts         = 10
	maxFactLabel     = 40
	maxFactValue     = 200
	maxSectionNames  = 25
	maxSummaryBullet = 5
	sectionSnippet   = 1000
	sectionBudget    = 12000
)

var (
	footnoteExpr  = regexp.MustCompile(`\[\d+\]`)
	blankLineExpr = regexp.MustCompile(`\n+`)
)

// section pairs a heading with the condensed text collected under it,
// preserving document order.
type section struct {
	Name string
	Text string
}

// WikipediaExtractor fetches and parses article pages.
type WikipediaExtractor struct {
	client *http.Client
}

// New wires an HTTP client; a 20s-timeout default is used when nil.
func New(client *http.Client) *WikipediaExtractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &WikipediaExtractor{client: client}
}

// Extract retrieves the page and derives title, plain text, summary,
// section headings, infobox facts and the structured prompt document.
func (e *WikipediaExtractor) Extract(ctx context.Context, pageURL string) (*domain.Article, error) {
	rawHTML, err := e.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, domain.NewParseError(fmt.Sprintf("Could not parse Wikipedia content: %v", err))
	}

	title := strings.TrimSpace(doc.Find("h1#firstHeading").First().Text())
	if title == "" {
		title = defaultTitle
	}

	contentDiv := doc.Find("div#mw-content-text").First()
	if contentDiv.Length() == 0 {
		return nil, domain.NewParseError("Could not parse Wikipedia content.")
	}

	main := contentDiv.Find("div.mw-parser-output").First()
	if main.Length() == 0 {
		main = contentDiv
	}

	// Strip noise before any text extraction; the infobox stays so facts
	// can be pulled from it.
	main.Find("sup, style, script, noscript").Remove()

	text := cleanText(flattenText(main))

	summary := extractSummary(paragraphTexts(main), summarySentences)

	var sections []string
	main.Find("h2, h3, h4, h5").Each(func(_ int, h *goquery.Selection) {
		headline := stripEditSuffix(collapseSpace(h.Text()))
		if headline != "" {
			sections = append(sections, headline)
		}
	})

	facts := extractInfoboxFacts(main)
	sectionText := sectionsToText(main)
	structured := buildStructuredText(title, summary, sections, sectionText, facts)

	return &domain.Article{
		Title:          title,
		Text:           text,
		Sections:       sections,
		Summary:        summary,
		StructuredText: structured,
		RawHTML:        rawHTML,
	}, nil
}

func (e *WikipediaExtractor) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", domain.NewFetchError("Unable to fetch the article.", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", domain.NewFetchError("Unable to fetch the article.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", domain.NewFetchError("Unable to fetch the article.", fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewFetchError("Unable to fetch the article.", err)
	}
	return string(body), nil
}

// flattenText joins every non-empty text node under sel with newlines, in
// document order.
func flattenText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				parts = append(parts, trimmed)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}
	return strings.Join(parts, "\n")
}

// cleanText removes bracketed numeric footnote markers and collapses
// repeated blank lines.
func cleanText(text string) string {
	text = footnoteExpr.ReplaceAllString(text, "")
	text = blankLineExpr.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// collapseSpace normalizes all runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripEditSuffix(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "[edit]", ""))
}

// paragraphTexts collects direct-child paragraph texts; when the content
// root has none it falls back to nested paragraphs.
func paragraphTexts(main *goquery.Selection) []string {
	var paragraphs []string
	main.ChildrenFiltered("p").Each(func(_ int, p *goquery.Selection) {
		paragraphs = append(paragraphs, collapseSpace(p.Text()))
	})
	if len(paragraphs) == 0 {
		main.Find("p").Each(func(_ int, p *goquery.Selection) {
			paragraphs = append(paragraphs, collapseSpace(p.Text()))
		})
	}
	return paragraphs
}

func extractSummary(paragraphs []string, sentenceLimit int) string {
	var cleaned []string
	for _, p := range paragraphs {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) > sentenceLimit {
		cleaned = cleaned[:sentenceLimit]
	}
	return strings.TrimSpace(strings.Join(cleaned, " "))
}

// extractInfoboxFacts reads label/value rows out of the article's infobox
// table. Absence of an infobox yields an empty list, not an error.
func extractInfoboxFacts(main *goquery.Selection) []string {
	var facts []string
	infobox := main.Find(`table[class*="infobox"]`).First()
	if infobox.Length() == 0 {
		return facts
	}

	infobox.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := row.Find("th.infobox-label, td.infobox-label").First()
		if label.Length() == 0 {
			label = row.Find("th").First()
		}
		data := row.Find("td.infobox-data").First()
		if data.Length() == 0 {
			data = row.Find("td").First()
		}
		if label.Length() == 0 || data.Length() == 0 {
			return true
		}

		h := collapseSpace(label.Text())
		d := collapseSpace(data.Text())
		if h != "" && d != "" && utf8.RuneCountInString(h) < maxFactLabel && utf8.RuneCountInString(d) < maxFactValue {
			facts = append(facts, fmt.Sprintf("%s: %s", h, d))
		}
		return len(facts) < maxFacts
	})
	return facts
}

// sectionsToText walks the content root's direct children in document
// order, treating each h2/h3/h4 as a section boundary. Paragraph text
// accumulates under the current section name, "Introduction" until the
// first heading appears.
func sectionsToText(main *goquery.Selection) []section {
	var result []section
	current := "Introduction"
	var buffer []string

	flush := func() {
		if len(buffer) > 0 {
			result = append(result, section{Name: current, Text: cleanText(strings.Join(buffer, "\n"))})
			buffer = nil
		}
	}

	main.Children().Each(func(_ int, el *goquery.Selection) {
		switch goquery.NodeName(el) {
		case "h2", "h3", "h4":
			flush()
			if headline := stripEditSuffix(collapseSpace(el.Text())); headline != "" {
				current = headline
			}
		case "p":
			if text := collapseSpace(el.Text()); text != "" {
				buffer = append(buffer, text)
			}
		}
	})
	flush()
	return result
}

// splitSentences splits after terminal punctuation followed by whitespace.
func splitSentences(s string) []string {
	var sentences []string
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if (runes[i] == '.' || runes[i] == '!' || runes[i] == '?') &&
			(i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			if sentence := strings.TrimSpace(b.String()); sentence != "" {
				sentences = append(sentences, sentence)
			}
			b.Reset()
		}
	}
	if rest := strings.TrimSpace(b.String()); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// buildStructuredText assembles the prompt document: a title line, summary
// bullets, infobox facts, section names and per-section snippets. Section
// details consume a global character budget; once it is exhausted no
// further section is started.
func buildStructuredText(title, summary string, sections []string, sectionText []section, facts []string) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Title: %s", title))

	if summary != "" {
		lines = append(lines, "", "Summary:")
		bullets := splitSentences(summary)
		if len(bullets) > maxSummaryBullet {
			bullets = bullets[:maxSummaryBullet]
		}
		for _, b := range bullets {
			lines = append(lines, fmt.Sprintf("- %s", b))
		}
	}

	if len(facts) > 0 {
		lines = append(lines, "", "Key facts (from infobox):")
		for _, f := range facts {
			lines = append(lines, fmt.Sprintf("- %s", f))
		}
	}

	if len(sections) > 0 {
		lines = append(lines, "", "Sections:")
		names := sections
		if len(names) > maxSectionNames {
			names = names[:maxSectionNames]
		}
		for _, s := range names {
			lines = append(lines, fmt.Sprintf("- %s", s))
		}
	}

	lines = append(lines, "", "Section details:")
	budget := sectionBudget
	for _, sec := range sectionText {
		if budget <= 0 {
			break
		}
		snippet := truncateRunes(sec.Text, sectionSnippet)
		budget -= utf8.RuneCountInString(snippet)
		lines = append(lines, fmt.Sprintf("## %s", sec.Name))
		lines = append(lines, snippet)
		lines = append(lines, "")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
