package profile

import (
	"sort"
	"strings"
)

// Scalar profile fields.
const (
	Grade10Percentage      = "grade_10_percentage"
	Grade12Percentage      = "grade_12_percentage"
	CGPA                   = "cgpa"
	JEEScore               = "jee_score"
	NEETScore              = "neet_score"
	SATScore               = "sat_score"
	GREScore               = "gre_score"
	GATEScore              = "gate_score"
	PreferredStream        = "preferred_stream"
	PreferredLocation      = "preferred_location"
	PreferredCourseType    = "preferred_course_type"
	BudgetMin              = "budget_min"
	BudgetMax              = "budget_max"
	Gender                 = "gender"
	Category               = "category"
	StateOfResidence       = "state_of_residence"
	CareerGoal             = "career_goal"
	SpecializationInterest = "specialization_interest"
	Extracurriculars       = "extracurriculars"
)

// Categories the extraction oracle groups facts under.
const (
	CategoryAcademic    = "academic_performance"
	CategoryPreferences = "preferences"
	CategoryConstraints = "constraints"
	CategoryPersonal    = "personal_info"
	CategoryGoals       = "goals_interests"
	CategoryAdditional  = "additional"
)

// AdditionalPrefix prefixes confidence and timestamp keys of additional_info entries.
const AdditionalPrefix = "additional_"

// Kind selects how a raw value is coerced into a field.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindBudget
	KindText
	KindGender
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBudget:
		return "budget"
	case KindText:
		return "text"
	case KindGender:
		return "gender"
	default:
		return "unknown"
	}
}

// Field describes one scalar profile field.
type Field struct {
	Name     string
	Category string
	Kind     Kind
	Min      *float64
	Max      *float64
}

// Numeric reports whether the field holds a number.
func (f Field) Numeric() bool {
	return f.Kind == KindFloat || f.Kind == KindInt || f.Kind == KindBudget
}

func bound(v float64) *float64 {
	return &v
}

// Fields is the category mapping table in schema order.
var Fields = []Field{
	{Name: Grade10Percentage, Category: CategoryAcademic, Kind: KindFloat, Min: bound(0), Max: bound(100)},
	{Name: Grade12Percentage, Category: CategoryAcademic, Kind: KindFloat, Min: bound(0), Max: bound(100)},
	{Name: CGPA, Category: CategoryAcademic, Kind: KindFloat, Min: bound(0), Max: bound(10)},
	{Name: JEEScore, Category: CategoryAcademic, Kind: KindInt, Min: bound(1)},
	{Name: NEETScore, Category: CategoryAcademic, Kind: KindInt, Min: bound(1)},
	{Name: SATScore, Category: CategoryAcademic, Kind: KindInt, Min: bound(400), Max: bound(1600)},
	{Name: GREScore, Category: CategoryAcademic, Kind: KindInt, Min: bound(260), Max: bound(340)},
	{Name: GATEScore, Category: CategoryAcademic, Kind: KindInt, Min: bound(0), Max: bound(1000)},
	{Name: PreferredStream, Category: CategoryPreferences, Kind: KindText},
	{Name: PreferredLocation, Category: CategoryPreferences, Kind: KindText},
	{Name: PreferredCourseType, Category: CategoryPreferences, Kind: KindText},
	{Name: BudgetMin, Category: CategoryConstraints, Kind: KindBudget, Min: bound(0)},
	{Name: BudgetMax, Category: CategoryConstraints, Kind: KindBudget, Min: bound(0)},
	{Name: Gender, Category: CategoryPersonal, Kind: KindGender},
	{Name: Category, Category: CategoryPersonal, Kind: KindText},
	{Name: StateOfResidence, Category: CategoryPersonal, Kind: KindText},
	{Name: CareerGoal, Category: CategoryGoals, Kind: KindText},
	{Name: SpecializationInterest, Category: CategoryGoals, Kind: KindText},
	{Name: Extracurriculars, Category: CategoryGoals, Kind: KindText},
}

var categoryAliases = map[string]string{
	"academic": CategoryAcademic,
	"personal": CategoryPersonal,
	"goals":    CategoryGoals,
}

var fieldIndex = func() map[string]Field {
	index := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		index[f.Name] = f
	}
	return index
}()

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CanonicalCategory resolves aliases. Unknown names are returned normalized but unchanged.
func CanonicalCategory(name string) string {
	name = normalizeName(name)
	if canonical, ok := categoryAliases[name]; ok {
		return canonical
	}
	return name
}

// Lookup returns the scalar field mapped by category and field name. It reports false for the
// additional category, unknown categories and fields outside the category's table.
func Lookup(category, name string) (Field, bool) {
	f, ok := fieldIndex[normalizeName(name)]
	if !ok || f.Category != CanonicalCategory(category) {
		return Field{}, false
	}
	return f, true
}

// FieldByName returns the scalar field regardless of category.
func FieldByName(name string) (Field, bool) {
	f, ok := fieldIndex[normalizeName(name)]
	return f, ok
}

// Categories lists the mapped categories in sorted order.
func Categories() []string {
	seen := make(map[string]struct{})
	for _, f := range Fields {
		seen[f.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// CategoryFields lists field names of a category in schema order.
func CategoryFields(category string) []string {
	category = CanonicalCategory(category)
	var out []string
	for _, f := range Fields {
		if f.Category == category {
			out = append(out, f.Name)
		}
	}
	return out
}
