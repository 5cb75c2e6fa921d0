package catalog

// Built-in competency ids.
const (
	BrandAdvocate        = "brand_advocate"
	Investigator         = "investigator"
	TeamPlayer           = "team_player"
	LeadershipEthics     = "leadership_ethics"
	BusinessAcumen       = "business_acumen"
	ProductsServices     = "products_services"
	SalesPlanningSelling = "sales_planning_selling"
)

func q5(id, text string) Question { return Question{ID: id, Text: text, Scale: Scale5} }
func q3(id, text string) Question { return Question{ID: id, Text: text, Scale: Scale3} }

// Default returns the built-in seven competency questionnaire with a flat 4.0 benchmark.
func Default() *Catalog {
	comps := []Competency{
		{ID: BrandAdvocate, Name: "Brand Advocate", Questions: []Question{
			q5("BA1", "Authenticity"),
			q5("BA2", "Eminence"),
			q5("BA3", "Strong Communication Skills"),
			q5("BA4", "Social Media Savvy"),
			q5("BA5", "Professionalism"),
		}},
		{ID: Investigator, Name: "Investigator", Questions: []Question{
			q5("IN1", "Good Planner"),
			q5("IN2", "Critical Thinking"),
			q5("IN3", "Good Problem Solver"),
			q5("IN4", "Insight Discovery"),
			q5("IN5", "Curiosity and Continuous Learning"),
		}},
		{ID: TeamPlayer, Name: "Team Player", Questions: []Question{
			q5("TP1", "Collaboration"),
			q5("TP2", "Supportiveness"),
			q5("TP3", "Active Participation"),
			q5("TP4", "Conflict Handling"),
			q5("TP5", "Adaptability in Teams"),
		}},
		{ID: LeadershipEthics, Name: "Leadership & Ethics", Questions: []Question{
			q5("LE1", "Formal Leadership Skills"),
			q5("LE2", "Informal Leadership Skills"),
			q3("LE3", "Good Core Values"),
			q3("LE4", "Integrity"),
			q5("LE5", "Responsibility"),
		}},
		{ID: BusinessAcumen, Name: "Business Acumen", Questions: []Question{
			q5("BAc1", "Good Planner"),
			q5("BAc2", "Financial Understanding"),
			q5("BAc3", "Understanding the Business"),
			q5("BAc4", "Understanding the Market"),
			q5("BAc5", "Growth Mindset"),
		}},
		{ID: ProductsServices, Name: "Products & Services", Questions: []Question{
			q5("PS1", "Product Knowledge"),
			q5("PS2", "Solution Fit"),
			q5("PS3", "Differentiation"),
			q5("PS4", "Updating Knowledge"),
			q5("PS5", "Market Alignment"),
		}},
		{ID: SalesPlanningSelling, Name: "Sales Planning & Selling", Questions: []Question{
			q5("SP1", "Use of Sales Tools"),
			q5("SP2", "Understanding the Sales Cycle"),
			q5("SP3", "Pipeline Management"),
			q5("SP4", "Account Planning"),
			q5("SP5", "Sales Activity and Execution"),
		}},
	}

	bench := make(BenchmarkProfile, len(comps))
	for _, c := range comps {
		bench[c.ID] = DefaultBenchmarkScore
	}
	return New(comps, bench)
}
