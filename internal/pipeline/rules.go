package pipeline

import "memclean/internal/config"

// Rules is the immutable configuration of one cleaning engine. A Rules value
// is never mutated after construction, so it is safe to share one across
// files and goroutines.
type Rules struct {
	// HeaderMappings renames exact source column names to canonical ones.
	HeaderMappings map[string]string

	// CellMappings remaps controlled-vocabulary values per canonical column.
	// Unmapped values pass through unchanged.
	CellMappings map[string]map[string]string

	// InterestKeywords maps a free-text phrase to the boolean column its
	// case-insensitive containment switches on.
	InterestKeywords map[string]string

	// InterestColumns are the boolean marker columns, in output order.
	InterestColumns []string

	// InterestColumn is the free-text source column, matched
	// case-insensitively against incoming column names.
	InterestColumn string

	// YouthFlagColumn is the exact-named yes/no source column that also
	// switches on INTEREST_YOUTH.
	YouthFlagColumn string

	// YouthFlagTarget is the interest column the yes-flag feeds.
	YouthFlagTarget string

	BadgeColumn   string
	BadgeSentinel string

	PhoneFields []string
	DateFields  []string

	// AgeColumn is consulted when AgeDateField carries a two-digit year.
	AgeColumn    string
	AgeDateField string

	// YearPivot splits two-digit years: below it 2000+yy is a candidate,
	// at or above it 1900+yy.
	YearPivot int

	// DateOutputLayout is the Go layout every successfully parsed date is
	// rendered with.
	DateOutputLayout string
}

// DefaultRules returns the stock membership-export rule set.
func DefaultRules() Rules {
	return Rules{
		HeaderMappings: map[string]string{
			"Badge":                     "BADGE",
			"First Name":                "FIRSTNAME",
			"Middle Name":               "MIDDLENAME",
			"Last Name":                 "LASTNAME",
			"Date Of Birth":             "BDAY",
			"Age":                       "AGE",
			"Home Facility":             "LOCATION",
			"Email":                     "EMAIL",
			"Do Not Mail":               "DO_NOT_MAIL",
			"Mobile Phone":              "SMS",
			"Line Address":              "ADDRESS",
			"City":                      "CITY",
			"State":                     "STATE",
			"Postal":                    "ZIP",
			"Country":                   "COUNTRY",
			"Last Visit Date":           "LAST_VISIT",
			"Participant Agreement":     "PARTICIPANT_AGREEMENT",
			"Belay":                     "BELAY_CERTIFIED",
			"Climbing Experience":       "EXPERIENCE_LEVEL",
			"Referred By":               "REFERRED_BY",
			"How Did You Hear About Us": "HOW_DID_YOU_HEAR",
			"Gender":                    "GENDER",
			"Pronouns":                  "PRONOUN",
			"Outdoor Aor":               "OUTDOOR_AOR",
			"Eligible For S1":           "ELIGIBLE_S1",
			"Customer Id":               "CUSTOMER_ID",
		},
		CellMappings: map[string]map[string]string{
			"BADGE": {
				"Staff":         "STAFF",
				"Member":        "MEMBER",
				"Member (frz)":  "FROZEN",
				"30-Day Member": "PREPAID-30",
				"Day Pass Pack": "MULTI_PASS",
			},
			"LOCATION": {
				"Alexandria": "ALX",
				"Sterling":   "STR",
				"Rio":        "RIO",
			},
		},
		InterestKeywords: map[string]string{
			"Adult Climbing Programs":                        "INTEREST_ADULT",
			"Fitness + Yoga":                                 "INTEREST_FITNESS",
			"Youth Climbing Programs":                        "INTEREST_YOUTH",
			"Outdoor Climbing Programs (SR Climbing Guides)": "INTEREST_OUTDOOR",
		},
		InterestColumns: []string{"INTEREST_YOUTH", "INTEREST_ADULT", "INTEREST_OUTDOOR", "INTEREST_FITNESS"},
		InterestColumn:  "Interest",
		YouthFlagColumn: "Youth Programs Interest",
		YouthFlagTarget: "INTEREST_YOUTH",

		BadgeColumn:   "BADGE",
		BadgeSentinel: "GUEST",

		PhoneFields: []string{"SMS"},
		DateFields:  []string{"BDAY", "LAST_VISIT"},

		AgeColumn:    "AGE",
		AgeDateField: "BDAY",

		YearPivot:        50,
		DateOutputLayout: "01-02-2006",
	}
}

// RulesFromConfig applies the environment overrides on top of the stock
// rule set.
func RulesFromConfig(cfg config.Config) Rules {
	r := DefaultRules()
	if cfg.BadgeSentinel != "" {
		r.BadgeSentinel = cfg.BadgeSentinel
	}
	if cfg.YearPivot > 0 {
		r.YearPivot = cfg.YearPivot
	}
	return r
}

// ValidColumns is the canonical output allow-list: every header-mapping
// target plus the interest marker columns.
func (r Rules) ValidColumns() map[string]struct{} {
	out := make(map[string]struct{}, len(r.HeaderMappings)+len(r.InterestColumns))
	for _, canonical := range r.HeaderMappings {
		out[canonical] = struct{}{}
	}
	for _, c := range r.InterestColumns {
		out[c] = struct{}{}
	}
	return out
}
