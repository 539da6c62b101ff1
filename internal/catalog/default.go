package catalog

func rank(n int) *int {
	return &n
}

var defaultEntries = []Entry{
	{Name: "IIT Bombay", Category: "Engineering", Location: "Mumbai", Fees: 800000, MinRank: rank(100), Streams: []string{"Engineering", "Technology"}, Acceptance: "Very Low"},
	{Name: "IIT Delhi", Category: "Engineering", Location: "Delhi", Fees: 750000, MinRank: rank(150), Streams: []string{"Engineering", "Computer Science"}, Acceptance: "Very Low"},
	{Name: "IIT Madras", Category: "Engineering", Location: "Chennai", Fees: 800000, MinRank: rank(120), Streams: []string{"Engineering", "Technology"}, Acceptance: "Very Low"},
	{Name: "BITS Pilani", Category: "Engineering", Location: "Rajasthan", Fees: 1200000, MinRank: rank(5000), Streams: []string{"Engineering", "Pharmacy", "Science"}, Acceptance: "Low"},
	{Name: "VIT Vellore", Category: "Engineering", Location: "Tamil Nadu", Fees: 900000, MinRank: rank(15000), Streams: []string{"Engineering", "Bio-Technology"}, Acceptance: "Moderate"},
	{Name: "Manipal Institute of Technology", Category: "Engineering", Location: "Karnataka", Fees: 1500000, MinRank: rank(20000), Streams: []string{"Engineering", "Medicine"}, Acceptance: "Moderate"},
	{Name: "NIT Trichy", Category: "Engineering", Location: "Tamil Nadu", Fees: 500000, MinRank: rank(3000), Streams: []string{"Engineering"}, Acceptance: "Low"},
	{Name: "NIT Surathkal", Category: "Engineering", Location: "Karnataka", Fees: 480000, MinRank: rank(3500), Streams: []string{"Engineering"}, Acceptance: "Low"},
	{Name: "AIIMS Delhi", Category: "Medical", Location: "Delhi", Fees: 600000, MinRank: rank(50), Streams: []string{"Medicine", "Nursing"}, Acceptance: "Very Low"},
	{Name: "JIPMER Puducherry", Category: "Medical", Location: "Puducherry", Fees: 500000, MinRank: rank(100), Streams: []string{"Medicine"}, Acceptance: "Very Low"},
	{Name: "Delhi University", Category: "University", Location: "Delhi", Fees: 200000, Streams: []string{"Arts", "Commerce", "Science"}, Acceptance: "Moderate"},
	{Name: "Jawaharlal Nehru University", Category: "University", Location: "Delhi", Fees: 300000, Streams: []string{"Arts", "Social Sciences"}, Acceptance: "Low"},
	{Name: "IIM Ahmedabad", Category: "Management", Location: "Gujarat", Fees: 2300000, MinRank: rank(99), Streams: []string{"MBA", "Management"}, Acceptance: "Very Low"},
	{Name: "IIM Bangalore", Category: "Management", Location: "Bangalore", Fees: 2400000, MinRank: rank(98), Streams: []string{"MBA", "Management"}, Acceptance: "Very Low"},
	{Name: "Tula's Institute", Category: "Engineering", Location: "Dehradun", Fees: 600000, MinRank: rank(50000), Streams: []string{"BCA", "MCA", "BBA", "MBA"}, Acceptance: "High"},
	{Name: "Graphic Era University", Category: "University", Location: "Dehradun", Fees: 700000, MinRank: rank(40000), Streams: []string{"Engineering", "Management"}, Acceptance: "Moderate"},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultEntries)
	if err != nil {
		panic("invalid default catalog: " + err.Error())
	}
	return c
}
