package campaigns

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/forms"
)

const notANumber = "Must be a number"

// ParseForm reads a submitted details form. Fields that fail to parse are
// reported alongside the draft; Validate covers the rest.
func ParseForm(v url.Values) (Draft, forms.FieldErrors) {
	errs := forms.FieldErrors{}

	d := Draft{
		ID:                 strings.TrimSpace(v.Get("draft_id")),
		Platform:           strings.TrimSpace(v.Get("platform")),
		Name:               strings.TrimSpace(v.Get("name")),
		CountryID:          strings.TrimSpace(v.Get("country_id")),
		StateID:            strings.TrimSpace(v.Get("state_id")),
		CityIDs:            nonEmpty(v["city_id"]),
		DraftDate:          strings.TrimSpace(v.Get("draft_date")),
		IsApprovalRequired: checked(v.Get("is_approval_required")),
		Dates:              strings.TrimSpace(v.Get("dates")),
		Description:        SanitizeDescription(v.Get("description")),
		Link:               strings.TrimSpace(v.Get("link")),
		FileID:             strings.TrimSpace(v.Get("file_id")),
	}
	if d.ID == "" {
		d.ID = NewDraft(d.Platform).ID
	}

	d.Demographic.UseGender = checked(v.Get("use_gender"))
	d.Demographic.GenderRatio = GenderBalanced
	if d.Demographic.UseGender {
		d.Demographic.GenderRatio = SnapGenderRatio(parseInt(v, "gender_ratio", errs))
	}
	d.Demographic.AgeRangeIDs = []int{}
	for _, raw := range nonEmpty(v["age_range_ids"]) {
		id, err := strconv.Atoi(raw)
		if err != nil {
			errs.Add("age_range_ids", "Unknown age range")
			continue
		}
		d.Demographic.AgeRangeIDs = append(d.Demographic.AgeRangeIDs, id)
	}

	d.FollowerMin = parseInt(v, "follower_min", errs)
	d.LikesMin = parseInt(v, "likes_min", errs)
	d.StoryImpressionsMin = parseInt(v, "story_impressions_min", errs)
	d.EngagementRangeID = parseInt(v, "ad_campaign_engagement_range_id", errs)
	d.DeliverableID = parseInt(v, "ad_campaign_deliverable_id", errs)
	d.ImpressionsCap = parseFloat(v, "impressions_cap", errs)
	d.Price = parseFloat(v, "price", errs)

	return d, errs
}

// Values renders a draft back into form values, for redisplaying the form
func (d Draft) Values() url.Values {
	v := url.Values{}
	v.Set("draft_id", d.ID)
	v.Set("platform", d.Platform)
	v.Set("name", d.Name)
	for _, id := range d.Demographic.AgeRangeIDs {
		v.Add("age_range_ids", strconv.Itoa(id))
	}
	if d.Demographic.UseGender {
		v.Set("use_gender", "on")
	}
	v.Set("gender_ratio", strconv.Itoa(d.Demographic.GenderRatio))
	v.Set("country_id", d.CountryID)
	v.Set("state_id", d.StateID)
	for _, id := range d.CityIDs {
		v.Add("city_id", id)
	}
	v.Set("follower_min", strconv.Itoa(d.FollowerMin))
	v.Set("likes_min", strconv.Itoa(d.LikesMin))
	v.Set("story_impressions_min", strconv.Itoa(d.StoryImpressionsMin))
	if d.EngagementRangeID != 0 {
		v.Set("ad_campaign_engagement_range_id", strconv.Itoa(d.EngagementRangeID))
	}
	v.Set("draft_date", d.DraftDate)
	if d.IsApprovalRequired {
		v.Set("is_approval_required", "on")
	}
	v.Set("dates", d.Dates)
	if d.DeliverableID != 0 {
		v.Set("ad_campaign_deliverable_id", strconv.Itoa(d.DeliverableID))
	}
	if d.ImpressionsCap != 0 {
		v.Set("impressions_cap", strconv.FormatFloat(d.ImpressionsCap, 'f', -1, 64))
	}
	if d.Price != 0 {
		v.Set("price", strconv.FormatFloat(d.Price, 'f', -1, 64))
	}
	v.Set("description", d.Description)
	v.Set("link", d.Link)
	v.Set("file_id", d.FileID)
	return v
}

func parseInt(v url.Values, field string, errs forms.FieldErrors) int {
	raw := strings.TrimSpace(v.Get(field))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(field, notANumber)
		return 0
	}
	return n
}

func parseFloat(v url.Values, field string, errs forms.FieldErrors) float64 {
	raw := strings.TrimSpace(v.Get(field))
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		errs.Add(field, notANumber)
		return 0
	}
	return f
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func nonEmpty(in []string) []string {
	out := []string{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
