package generator

import (
	"context"
	"math/rand/v2"

	"github.com/akilliyazili/yazili-backend/internal/model"
)

// BankStrategy samples the built-in question pools.
type BankStrategy struct {
	pools   map[string][]bankQuestion
	general []bankQuestion
	intn    func(n int) int
}

// NewBankStrategy creates a BankStrategy over the built-in pools.
func NewBankStrategy() *BankStrategy {
	return &BankStrategy{pools: subjectPools, general: generalPool, intn: rand.IntN}
}

func (b *BankStrategy) Name() string { return SourceBank }

// Generate picks up to req.Count distinct entries of the subject pool,
// falling back to the general pool for unknown subjects. A pool smaller than
// the request is padded with random general questions of the requested types.
func (b *BankStrategy) Generate(ctx context.Context, req Request) ([]model.GeneratedQuestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, ok := b.pools[req.Subject]
	if !ok {
		source = b.general
	}
	available := filterTypes(source, req.Types)

	if len(available) < req.Count {
		fillers := filterTypes(b.general, req.Types)
		if len(fillers) > 0 {
			for missing := req.Count - len(available); missing > 0; missing-- {
				available = append(available, fillers[b.intn(len(fillers))])
			}
		}
	}

	n := min(req.Count, len(available))
	picked := make(map[int]struct{}, n)
	out := make([]model.GeneratedQuestion, 0, n)
	for len(out) < n {
		i := b.intn(len(available))
		if _, dup := picked[i]; dup {
			continue
		}
		picked[i] = struct{}{}
		out = append(out, available[i].toGenerated())
	}

	assignIDs(out)
	return out, nil
}

func filterTypes(pool []bankQuestion, types []model.QuestionType) []bankQuestion {
	out := make([]bankQuestion, 0, len(pool))
	for _, q := range pool {
		if hasType(types, q.Type) {
			out = append(out, q)
		}
	}
	return out
}

func (q bankQuestion) toGenerated() model.GeneratedQuestion {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return model.GeneratedQuestion{
		Text:          q.Text,
		Type:          q.Type,
		Options:       opts,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
}
