package campaigns

// Gender ratio stops on the audience slider
const (
	GenderMoreMale   = 0
	GenderBalanced   = 50
	GenderMoreFemale = 100
)

// SnapGenderRatio moves a slider value to the nearest stop
func SnapGenderRatio(v int) int {
	switch {
	case v < 25:
		return GenderMoreMale
	case v < 75:
		return GenderBalanced
	default:
		return GenderMoreFemale
	}
}

// GenderLabel describes a snapped ratio. Values between stops have no label.
func GenderLabel(ratio int) string {
	switch ratio {
	case GenderMoreMale:
		return "More Male (75% Male / 25% Female)"
	case GenderBalanced:
		return "50-50"
	case GenderMoreFemale:
		return "More Female (75% Female / 25% Male)"
	default:
		return ""
	}
}
