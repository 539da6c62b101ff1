package ranking

import (
	"strconv"

	"github.com/spigell/college-counselor/internal/catalog"
	"github.com/spigell/college-counselor/internal/profile"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	withinBudgetPoints  = 15
	stretchBudgetPoints = 5
)

type budgetBonus struct {
	toggle
}

// NewBudget awards entries whose fees fit the maximum budget, with a smaller bonus up to 120% of it.
func NewBudget() Bonus {
	return &budgetBonus{}
}

func (b *budgetBonus) Name() string { return "budget" }

func (b *budgetBonus) Score(p *profile.Profile, e *catalog.Entry) (int, string, bool) {
	if p.BudgetMax == nil || *p.BudgetMax <= 0 {
		return 0, "", false
	}
	budget := *p.BudgetMax

	switch {
	case e.Fees <= budget:
		return withinBudgetPoints, "Within budget (₹" + formatRupees(e.Fees) + ")", true
	// fees <= 1.2 * budget
	case e.Fees*5 <= budget*6:
		return stretchBudgetPoints, "Slightly above budget but manageable", true
	}
	return 0, "", false
}

func (b *budgetBonus) Status() Status {
	st := b.status(b.Name(), withinBudgetPoints)
	st.Details["stretch_points"] = strconv.Itoa(stretchBudgetPoints)
	return st
}

func formatRupees(amount int) string {
	return message.NewPrinter(language.English).Sprintf("%d", amount)
}
