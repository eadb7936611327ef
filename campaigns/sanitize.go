package campaigns

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// descriptionPolicy matches what the description editor produces: paragraphs,
// bold, italic and bullet lists.
var descriptionPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "b", "em", "i", "u", "ul", "ol", "li")
	return p
}()

// SanitizeDescription strips markup the editor cannot produce. An editor that
// was left empty yields "".
func SanitizeDescription(html string) string {
	clean := strings.TrimSpace(descriptionPolicy.Sanitize(html))
	switch clean {
	case "<p><br></p>", "<p><br/></p>", "<p></p>":
		return ""
	}
	return clean
}
