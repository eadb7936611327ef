package campaigns

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/forms"
	"github.com/oklog/ulid/v2"
)

const (
	MaxTitleLength = 70
	MinPrice       = 25.0
)

// Option is one entry of a server-provided choice list
type Option struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Options are the choice lists the campaign form is built from
type Options struct {
	AgeRanges        []Option `json:"age_ranges"`
	EngagementRanges []Option `json:"engagement_ranges"`
	Deliverables     []Option `json:"deliverables"`
}

// ID accepts numeric and string ids from the API
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Location is a city or state returned by the audience location search
type Location struct {
	ID          ID     `json:"id"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type,omitempty"`
}

// Demographic narrows the audience
type Demographic struct {
	AgeRangeIDs []int `json:"age_range_ids"`
	UseGender   bool  `json:"use_gender"`
	GenderRatio int   `json:"gender_ratio"`
}

// Draft is a campaign being created
type Draft struct {
	ID                  string      `json:"-"`
	Platform            string      `json:"platform"`
	Name                string      `json:"name"`
	Demographic         Demographic `json:"demographic"`
	CountryID           string      `json:"country_id,omitempty"`
	StateID             string      `json:"state_id,omitempty"`
	CityIDs             []string    `json:"city_id"`
	FollowerMin         int         `json:"follower_min"`
	LikesMin            int         `json:"likes_min"`
	StoryImpressionsMin int         `json:"story_impressions_min"`
	EngagementRangeID   int         `json:"ad_campaign_engagement_range_id,omitempty"`
	DraftDate           string      `json:"draft_date,omitempty"`
	IsApprovalRequired  bool        `json:"is_approval_required"`
	Dates               string      `json:"dates,omitempty"`
	DeliverableID       int         `json:"ad_campaign_deliverable_id,omitempty"`
	ImpressionsCap      float64     `json:"impressions_cap,omitempty"`
	Price               float64     `json:"price"`
	Description         string      `json:"description,omitempty"`
	Link                string      `json:"link,omitempty"`
	FileID              string      `json:"file_id,omitempty"`
}

// NewDraft starts a draft for platform with the form's defaults
func NewDraft(platform string) Draft {
	return Draft{
		ID:       NewDraftID(time.Now()),
		Platform: platform,
		Demographic: Demographic{
			AgeRangeIDs: []int{},
			UseGender:   true,
			GenderRatio: GenderBalanced,
		},
		CityIDs: []string{},
	}
}

// NewDraftID returns a sortable id used to make campaign creation idempotent
func NewDraftID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}

// TotalAmount is impressions cap × price per thousand, 0 when either is unset
func (d Draft) TotalAmount() float64 {
	total := d.ImpressionsCap * (d.Price / 1000)
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	return total
}

// HasImpressionsCap reports whether the campaign is priced against an impressions cap
func (d Draft) HasImpressionsCap() bool {
	return d.ImpressionsCap > 0
}

// Validate checks the draft the way the form does before submitting
func (d Draft) Validate() forms.FieldErrors {
	errs := forms.FieldErrors{}
	if d.Name == "" {
		errs.Add("name", "Campaign title is required")
	} else if len([]rune(d.Name)) > MaxTitleLength {
		errs.Add("name", "Campaign title must be "+strconv.Itoa(MaxTitleLength)+" characters or fewer")
	}
	if d.FollowerMin < 0 {
		errs.Add("follower_min", "Must be at least 0")
	}
	if d.LikesMin < 0 {
		errs.Add("likes_min", "Must be at least 0")
	}
	if d.StoryImpressionsMin < 0 {
		errs.Add("story_impressions_min", "Must be at least 0")
	}
	if d.ImpressionsCap < 0 {
		errs.Add("impressions_cap", "Must be at least 0")
	}
	if d.Price < MinPrice && !d.HasImpressionsCap() {
		errs.Add("price", "$25 minimum")
	}
	return errs
}

// Campaign is a campaign as listed by the API
type Campaign struct {
	ID             ID      `json:"id"`
	Name           string  `json:"name"`
	Platform       string  `json:"platform,omitempty"`
	Status         string  `json:"status,omitempty"`
	Price          float64 `json:"price,omitempty"`
	ImpressionsCap float64 `json:"impressions_cap,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
}
