package suggest

import (
	"errors"
	"sort"

	"github.com/bastiangx/wordlens/internal/utils"
	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/bastiangx/wordlens/pkg/patterns"
	"github.com/charmbracelet/log"
)

// DefaultLimit caps suggestions when the caller passes a non-positive limit.
const DefaultLimit = 20

// maxVisited bounds the subtree walk for very short prefixes.
const maxVisited = 5000

var errStopWalk = errors.New("stop walk")

type Suggestion struct {
	Pattern     string      `json:"pattern" msgpack:"pattern"`
	Kind        domain.Kind `json:"kind" msgpack:"kind"`
	Translation string      `json:"translation,omitempty" msgpack:"translation,omitempty"`
	Meanings    int         `json:"meanings" msgpack:"meanings"`
}

// Complete returns patterns starting with prefix, shorter patterns first and
// then alphabetically. The exact prefix itself is included when it is a
// pattern. Capitalized prefix positions are carried over to the results.
func Complete(store *patterns.Store, prefix string, limit int) []Suggestion {
	if store == nil || !utils.IsValidInput(prefix) {
		return []Suggestion{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	capitalPositions := CapitalPositions(prefix)
	var suggestions []Suggestion
	visited := 0
	err := store.WalkPrefix(prefix, func(e *domain.Entry) error {
		visited++
		if visited > maxVisited {
			return errStopWalk
		}
		s := Suggestion{
			Pattern:  ApplyCapitalization(e.Pattern, capitalPositions),
			Kind:     e.Kind,
			Meanings: len(e.Meanings),
		}
		if len(e.Meanings) > 0 {
			s.Translation = e.Meanings[0].Translation
		}
		suggestions = append(suggestions, s)
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		log.Errorf("Error visiting pattern subtree: %v", err)
		return []Suggestion{}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		li, lj := utils.RuneLen(suggestions[i].Pattern), utils.RuneLen(suggestions[j].Pattern)
		if li != lj {
			return li < lj
		}
		return suggestions[i].Pattern < suggestions[j].Pattern
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	if suggestions == nil {
		suggestions = []Suggestion{}
	}
	return suggestions
}
