package features

import (
	"strings"

	"github.com/clintrovert/taskfeatures/pkg/types"
)

// MessageSeparator joins commit messages and comment bodies
const MessageSeparator = " | "

// CommitSummary is the scalar fold of a task's commits
type CommitSummary struct {
	Additions    int
	Deletions    int
	FilesChanged int
	Messages     string
}

// AggregateCommits sums file changes across commits and joins their messages.
// A file touched by two commits counts twice.
func AggregateCommits(commits []types.Commit) CommitSummary {
	var summary CommitSummary
	messages := make([]string, 0, len(commits))
	for _, commit := range commits {
		for _, file := range commit.Files {
			summary.Additions += file.Additions
			summary.Deletions += file.Deletions
			summary.FilesChanged++
		}
		messages = append(messages, commit.Message)
	}
	summary.Messages = strings.Join(messages, MessageSeparator)
	return summary
}
