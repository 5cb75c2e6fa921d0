package loadtest

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/internal/domain/session"
)

// persona biases where on a question's scale a respondent answers.
// low and high are fractions of the scale.
type persona struct {
	name      string
	low, high float64
}

var personas = []persona{
	{name: "developing", low: 0, high: 0.4},
	{name: "average", low: 0.3, high: 0.7},
	{name: "strong", low: 0.6, high: 1},
	{name: "elite", low: 0.9, high: 1},
	{name: "mixed", low: 0, high: 1},
}

var firstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Ken", "Radia", "Linus", "Margaret", "Dennis"}
var surnames = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Thompson", "Perlman", "Torvalds", "Hamilton", "Ritchie"}

// generator builds reproducible respondents for a catalog.
type generator struct {
	rng *rand.Rand
	cat *catalog.Catalog
}

func newGenerator(cat *catalog.Catalog, seed uint64) *generator {
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), cat: cat}
}

// respondents returns n respondents with unique e-mails and submission ids.
func (g *generator) respondents(n int) []Respondent {
	out := make([]Respondent, n)
	for i := range out {
		out[i] = g.respondent(i)
	}
	return out
}

func (g *generator) respondent(i int) Respondent {
	p := personas[g.rng.IntN(len(personas))]
	first := firstNames[g.rng.IntN(len(firstNames))]
	last := surnames[g.rng.IntN(len(surnames))]

	var responses []scoring.Response
	for _, c := range g.cat.Competencies {
		for _, q := range c.Questions {
			responses = append(responses, scoring.Response{QuestionID: q.ID, Rating: g.rate(p, q.Scale)})
		}
	}
	return Respondent{
		SubmissionID: uuid.NewString(),
		Persona:      p.name,
		User: session.UserInfo{
			FirstName: first,
			Surname:   last,
			Email:     fmt.Sprintf("%s.%s.%d@loadtest.example", first, last, i),
		},
		Responses:  responses,
		Experience: session.MinExperience + g.rng.IntN(session.MaxExperience),
	}
}

// rate draws a rating in [1, scale] within the persona's band.
func (g *generator) rate(p persona, scale catalog.Scale) int {
	span := float64(scale - 1)
	v := p.low + g.rng.Float64()*(p.high-p.low)
	r := 1 + int(v*span+0.5)
	return min(max(r, 1), int(scale))
}
