package features

// LabelNormalizer folds raw labels into the canonical vocabulary
type LabelNormalizer struct {
	mapping   map[string]string
	ambiguous string
}

// NewLabelNormalizer creates a normalizer over a raw-label to category table.
// Labels that normalize to ambiguous are dropped from the output.
func NewLabelNormalizer(mapping map[string]string, ambiguous string) *LabelNormalizer {
	return &LabelNormalizer{
		mapping:   mapping,
		ambiguous: ambiguous,
	}
}

// Normalize maps, filters and de-duplicates labels. Unmapped labels are kept
// as they are. The result keeps the order in which labels first appear.
func (n *LabelNormalizer) Normalize(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		mapped, ok := n.mapping[label]
		if !ok {
			mapped = label
		}
		if mapped == n.ambiguous {
			continue
		}
		if _, dup := seen[mapped]; dup {
			continue
		}
		seen[mapped] = struct{}{}
		out = append(out, mapped)
	}
	return out
}
