package vaccination

// Type is one dose slot in the national schedule.
type Type struct {
	Name        string `json:"name"`
	ShortName   string `json:"shortName"`
	Description string `json:"description"`
	AgeMonths   int    `json:"ageMonths"`
}

// Alias maps a word found in notes onto a schedule short name.
type Alias struct {
	Keyword   string
	ShortName string
}

const (
	dtpHibIPV = "DTP-Hib-IPV"
	prevenar  = "Prevenar 13"
	mmr       = "MMR"
	menC      = "MenC"
	dtpIPV    = "DTP-IPV"
	tdap      = "Tdap"

	descDTPHibIPV = "Difterija, tetanus, pertusis, Haemophilus influenzae, polio"
	descPrevenar  = "Pneumokokna infekcija"
	descMMR       = "Morbilli, mumps, rubella (trivivac)"
)

// Croatian schedule, ascending by age.
var defaultSchedule = []Type{
	{Name: dtpHibIPV, ShortName: dtpHibIPV, Description: descDTPHibIPV, AgeMonths: 2},
	{Name: prevenar, ShortName: prevenar, Description: descPrevenar, AgeMonths: 2},
	{Name: dtpHibIPV, ShortName: dtpHibIPV, Description: descDTPHibIPV, AgeMonths: 3},
	{Name: prevenar, ShortName: prevenar, Description: descPrevenar, AgeMonths: 3},
	{Name: dtpHibIPV, ShortName: dtpHibIPV, Description: descDTPHibIPV, AgeMonths: 4},
	{Name: prevenar, ShortName: prevenar, Description: descPrevenar, AgeMonths: 4},
	{Name: mmr, ShortName: mmr, Description: descMMR, AgeMonths: 12},
	{Name: menC, ShortName: menC, Description: "Meningokok C", AgeMonths: 12},
	{Name: dtpHibIPV, ShortName: dtpHibIPV, Description: descDTPHibIPV, AgeMonths: 18},
	{Name: dtpIPV, ShortName: dtpIPV, Description: "Difterija, tetanus, pertusis, polio", AgeMonths: 6 * 12},
	{Name: mmr, ShortName: mmr, Description: descMMR, AgeMonths: 6 * 12},
	{Name: tdap, ShortName: tdap, Description: "Tetanus, difterija, pertusis (za adolescente)", AgeMonths: 11 * 12},
}

var defaultAliases = []Alias{
	{"dtp", dtpHibIPV},
	{"dtp-hib-ipv", dtpHibIPV},
	{"difterija", dtpHibIPV},
	{"tetanus", dtpHibIPV},
	{"pertusis", dtpHibIPV},
	{"haemophilus", dtpHibIPV},
	{"polio", dtpHibIPV},
	{"poliomijelitis", dtpHibIPV},
	{"prevenar", prevenar},
	{"pneumokok", prevenar},
	{"pneumokokna", prevenar},
	{"mmr", mmr},
	{"trivivac", mmr},
	{"morbili", mmr},
	{"mumps", mmr},
	{"rubella", mmr},
	{"rubeola", mmr},
	{"ospice", mmr},
	{"zaušnjaci", mmr},
	{"menc", menC},
	{"meningokok", menC},
	{"meningokok c", menC},
	{"tdap", tdap},
}

// Schedule returns a copy of the built-in schedule.
func Schedule() []Type {
	return append([]Type(nil), defaultSchedule...)
}
