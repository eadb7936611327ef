package campaigns_test

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/go-adcampaign-dashboard/campaigns"
	"github.com/stretchr/testify/require"
)

func validDraft() campaigns.Draft {
	d := campaigns.NewDraft("instagram")
	d.Name = "Spring launch"
	d.Price = 30
	return d
}

func TestValidate(t *testing.T) {
	require.Empty(t, validDraft().Validate())

	d := validDraft()
	d.Name = ""
	require.Equal(t, "Campaign title is required", d.Validate()["name"])

	d = validDraft()
	d.Name = strings.Repeat("a", campaigns.MaxTitleLength)
	require.Empty(t, d.Validate())
	d.Name += "a"
	require.Contains(t, d.Validate(), "name")

	d = validDraft()
	d.FollowerMin = -1
	d.LikesMin = -1
	errs := d.Validate()
	require.Equal(t, "Must be at least 0", errs["follower_min"])
	require.Equal(t, "Must be at least 0", errs["likes_min"])
}

func TestValidate_PriceMinimum(t *testing.T) {
	d := validDraft()
	d.Price = 24.99
	require.Equal(t, "$25 minimum", d.Validate()["price"])

	d.Price = 25
	require.Empty(t, d.Validate())

	// capped campaigns are priced per thousand impressions
	d.Price = 5
	d.ImpressionsCap = 10000
	require.Empty(t, d.Validate())
}

func TestTotalAmount(t *testing.T) {
	d := validDraft()
	d.ImpressionsCap = 20000
	d.Price = 30
	require.InDelta(t, 600.0, d.TotalAmount(), 0.0001)

	d.ImpressionsCap = 0
	require.Zero(t, d.TotalAmount())
}

func TestSnapGenderRatio(t *testing.T) {
	cases := map[int]int{0: 0, 24: 0, 25: 50, 50: 50, 74: 50, 75: 100, 100: 100}
	for in, want := range cases {
		require.Equal(t, want, campaigns.SnapGenderRatio(in), "input %d", in)
	}
	require.Equal(t, "50-50", campaigns.GenderLabel(50))
	require.Equal(t, "More Male (75% Male / 25% Female)", campaigns.GenderLabel(0))
	require.Equal(t, "More Female (75% Female / 25% Male)", campaigns.GenderLabel(100))
	require.Empty(t, campaigns.GenderLabel(42))
}

func TestParseForm(t *testing.T) {
	v := url.Values{
		"draft_id":                        {"01J00000000000000000000000"},
		"platform":                        {"tiktok"},
		"name":                            {"  Summer  "},
		"age_range_ids":                   {"1", "3", ""},
		"use_gender":                      {"on"},
		"gender_ratio":                    {"80"},
		"city_id":                         {"12", " ", "ChIJ"},
		"follower_min":                    {"1000"},
		"impressions_cap":                 {"5000"},
		"price":                           {"12.5"},
		"is_approval_required":            {"on"},
		"ad_campaign_engagement_range_id": {"2"},
		"description":                     {`<p><strong>Hi</strong><script>alert(1)</script></p>`},
	}

	d, errs := campaigns.ParseForm(v)
	require.Empty(t, errs)
	require.Equal(t, "01J00000000000000000000000", d.ID)
	require.Equal(t, "tiktok", d.Platform)
	require.Equal(t, "Summer", d.Name)
	require.Equal(t, []int{1, 3}, d.Demographic.AgeRangeIDs)
	require.True(t, d.Demographic.UseGender)
	require.Equal(t, 100, d.Demographic.GenderRatio)
	require.Equal(t, []string{"12", "ChIJ"}, d.CityIDs)
	require.Equal(t, 1000, d.FollowerMin)
	require.Equal(t, 2, d.EngagementRangeID)
	require.True(t, d.IsApprovalRequired)
	require.Equal(t, "<p><strong>Hi</strong></p>", d.Description)
	require.InDelta(t, 62.5, d.TotalAmount(), 0.0001)
	require.Empty(t, d.Validate())
}

func TestParseForm_BadNumbers(t *testing.T) {
	d, errs := campaigns.ParseForm(url.Values{
		"name":         {"x"},
		"follower_min": {"lots"},
		"price":        {"NaN"},
	})
	require.Equal(t, "Must be a number", errs["follower_min"])
	require.Equal(t, "Must be a number", errs["price"])
	require.Zero(t, d.Price)
	require.NotEmpty(t, d.ID)
}

func TestParseForm_GenderOff(t *testing.T) {
	d, _ := campaigns.ParseForm(url.Values{"gender_ratio": {"0"}})
	require.False(t, d.Demographic.UseGender)
	require.Equal(t, campaigns.GenderBalanced, d.Demographic.GenderRatio)
}

func TestDraftValuesRoundTrip(t *testing.T) {
	d := validDraft()
	d.Demographic.AgeRangeIDs = []int{2}
	d.CityIDs = []string{"7"}
	d.ImpressionsCap = 1000

	back, errs := campaigns.ParseForm(d.Values())
	require.Empty(t, errs)
	require.Equal(t, d, back)
}

func TestDraftJSON(t *testing.T) {
	d := validDraft()
	b, err := json.Marshal(d)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	require.Equal(t, "Spring launch", m["name"])
	require.Equal(t, "instagram", m["platform"])
	require.NotContains(t, m, "ID")
	require.Contains(t, m, "demographic")
}

func TestLocationID(t *testing.T) {
	var locs []campaigns.Location
	require.NoError(t, json.Unmarshal([]byte(`[{"id":5,"display_name":"Austin, TX"},{"id":"abc","display_name":"Texas","type":"state"}]`), &locs))
	require.Equal(t, campaigns.ID("5"), locs[0].ID)
	require.Equal(t, campaigns.ID("abc"), locs[1].ID)
	require.Equal(t, "state", locs[1].Type)
}

func TestSanitizeDescription(t *testing.T) {
	require.Empty(t, campaigns.SanitizeDescription("<p><br></p>"))
	require.Equal(t, "<ul><li>one</li></ul>", campaigns.SanitizeDescription(`<ul><li onclick="x()">one</li></ul>`))
	require.Equal(t, "<p>link</p>", campaigns.SanitizeDescription(`<p><a href="javascript:x">link</a></p>`))
}

func TestCatalogue(t *testing.T) {
	c := campaigns.DefaultCatalogue()
	require.Len(t, c.Platforms, 2)

	p, ok := c.Lookup("instagram")
	require.True(t, ok)
	require.Equal(t, "Instagram", p.Name)
	require.Len(t, p.Bullets, 3)

	_, ok = c.Lookup("myspace")
	require.False(t, ok)

	_, err := campaigns.LoadCatalogue("[[platform]]\nid = \"a\"\n[[platform]]\nid = \"a\"\n")
	require.Error(t, err)
}

func TestWizard(t *testing.T) {
	c := campaigns.DefaultCatalogue()
	w := campaigns.NewWizard()
	require.Equal(t, campaigns.StepPlatform, w.Step)

	// Next needs a selection
	require.False(t, w.CanAdvance(c))
	require.Equal(t, campaigns.StepPlatform, w.Next(c).Step)

	require.Equal(t, campaigns.StepPlatform, w.Select("bogus").Next(c).Step)

	w = w.Select("tiktok").Next(c)
	require.Equal(t, campaigns.StepDetails, w.Step)
	require.Equal(t, "tiktok", w.Platform)

	back, exit := w.Back()
	require.False(t, exit)
	require.Equal(t, campaigns.StepPlatform, back.Step)
	require.Equal(t, "tiktok", back.Platform)

	_, exit = back.Back()
	require.True(t, exit)
}
