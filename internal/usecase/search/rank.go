package search

import (
	"math"
	"sort"

	"golang.org/x/text/collate"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
)

// ranker orders results by the tie-break chain:
// score (beyond epsilon), exact name match, product before bundling, name.
// A collate.Collator is not safe for concurrent use, so each ranker owns one.
type ranker struct {
	query   string
	epsilon float64
	coll    *collate.Collator
}

func (e *Engine) newRanker(q string) *ranker {
	return &ranker{
		query:   q,
		epsilon: e.tuning.TieEpsilon,
		coll:    collate.New(e.tuning.Locale),
	}
}

// sort orders results in place. Input is first put into (type, id) order so
// the outcome depends only on the item set, not on snapshot order.
func (r *ranker) sort(results []result.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Item(), results[j].Item()
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.ID < b.ID
	})
	sort.SliceStable(results, func(i, j int) bool {
		return r.less(&results[i], &results[j])
	})
}

// less is not transitive when scores are near-tied: with 1.016, 1.008 and
// 1.000 each neighbouring pair falls within epsilon while the outer pair
// does not, so name order can place a lower score first. sort's pre-pass
// fixes the input order, which keeps the outcome deterministic.
func (r *ranker) less(a, b *result.Result) bool {
	if d := a.Score() - b.Score(); math.Abs(d) > r.epsilon {
		return d > 0
	}

	ai, bi := a.Item(), b.Item()

	if ae, be := r.exact(&ai), r.exact(&bi); ae != be {
		return ae
	}
	if ai.Type != bi.Type {
		return ai.Type == catalog.Product
	}
	if c := r.coll.CompareString(ai.Name, bi.Name); c != 0 {
		return c < 0
	}
	if ai.Name != bi.Name {
		return ai.Name < bi.Name
	}
	return ai.ID < bi.ID
}

func (r *ranker) exact(item *catalog.Item) bool {
	return normalize(item.Name) == r.query
}
