package features

import (
	"strings"

	"github.com/clintrovert/taskfeatures/pkg/types"
)

var titleReplacer = strings.NewReplacer(":", "", `\`, "", "'", "", `"`, "")

// SanitizeTitle strips colons, backslashes and quotes from a title
func SanitizeTitle(title string) string {
	return titleReplacer.Replace(title)
}

func joinComments(comments []types.Comment) string {
	bodies := make([]string, 0, len(comments))
	for _, c := range comments {
		bodies = append(bodies, c.Body)
	}
	return strings.Join(bodies, MessageSeparator)
}
