package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-adcampaign-dashboard/apiclient"
	"github.com/jrsteele09/go-adcampaign-dashboard/campaigns"
	"github.com/jrsteele09/go-adcampaign-dashboard/guards"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/forms"
	"github.com/rs/zerolog/log"
)

const activeCampaigns = "campaigns"

// Wizard form fields. The platform step posts step=platform and action=next.
const (
	fieldStep   = "step"
	fieldAction = "action"

	stepDetails = "details"
	actionBack  = "back"
)

type campaignListPage struct {
	Campaigns []campaigns.Campaign
}

type platformPage struct {
	Platforms []campaigns.Platform
	Selected  string
}

type detailsPage struct {
	Platform       campaigns.Platform
	Draft          campaigns.Draft
	Options        campaigns.Options
	Total          float64
	MaxTitleLength int
}

// CampaignListHandler lists the account's campaigns (GET /adcampaigns)
func (s *Server) CampaignListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.api.ListCampaigns(r.Context())
		if err != nil {
			if s.sessionEnded(w, r) {
				return
			}
			log.Err(err).Msg("Failed to list campaigns")
			s.render(w, failureStatus(err), pageCampaigns, pageData{
				Title:      "Campaigns",
				ActivePage: activeCampaigns,
				Error:      apiclient.MessageOf(err, "Failed to load campaigns"),
				Content:    campaignListPage{},
			})
			return
		}
		s.render(w, http.StatusOK, pageCampaigns, pageData{
			Title:      "Campaigns",
			ActivePage: activeCampaigns,
			Content:    campaignListPage{Campaigns: list},
		})
	}
}

// CampaignCreatePageHandler opens the wizard on platform selection (GET /adcampaign/create)
func (s *Server) CampaignCreatePageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPlatformStep(w, http.StatusOK, campaigns.NewWizard(), "")
	}
}

// CampaignCreateSubmissionHandler moves the wizard along and finally creates
// the campaign (POST /adcampaign/create)
func (s *Server) CampaignCreateSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := parseSubmission(r); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		action := r.PostFormValue(fieldAction)
		platform := r.PostFormValue("platform")

		if r.PostFormValue(fieldStep) != stepDetails {
			if action == actionBack {
				http.Redirect(w, r, guards.CampaignsPath, http.StatusSeeOther)
				return
			}
			wiz := campaigns.NewWizard().Select(platform)
			if !wiz.CanAdvance(s.catalogue) {
				s.renderPlatformStep(w, http.StatusUnprocessableEntity, wiz, "Please select a platform")
				return
			}
			wiz = wiz.Next(s.catalogue)
			s.renderDetailsStep(w, r, http.StatusOK, campaigns.NewDraft(wiz.Platform), nil, "")
			return
		}

		if action == actionBack {
			prev, _ := campaigns.Wizard{Step: campaigns.StepDetails, Platform: platform}.Back()
			s.renderPlatformStep(w, http.StatusOK, prev, "")
			return
		}

		draft, errs := campaigns.ParseForm(r.PostForm)
		for field, msg := range draft.Validate() {
			errs.Add(field, msg)
		}
		if _, ok := s.catalogue.Lookup(draft.Platform); !ok {
			errs.Add("", "Unknown platform")
		}
		if !errs.OK() {
			s.renderDetailsStep(w, r, http.StatusUnprocessableEntity, draft, errs, "")
			return
		}

		if err := s.attachUpload(r, &draft); err != nil {
			if s.sessionEnded(w, r) {
				return
			}
			log.Err(err).Msg("Failed to upload campaign file")
			s.renderDetailsStep(w, r, failureStatus(err), draft, nil, apiclient.MessageOf(err, "File upload failed"))
			return
		}

		created, err := s.api.CreateCampaign(r.Context(), draft)
		if err != nil {
			if s.sessionEnded(w, r) {
				return
			}
			log.Err(err).Str("draft", draft.ID).Msg("Failed to create campaign")
			fields, msg := formFailure(err, "Failed to create campaign")
			s.renderDetailsStep(w, r, failureStatus(err), draft, fields, msg)
			return
		}
		log.Info().Str("draft", draft.ID).Str("campaign", string(created.ID)).Msg("Campaign created")
		http.Redirect(w, r, guards.CampaignsPath, http.StatusSeeOther)
	}
}

// CampaignLocationsHandler backs the audience city search (GET /adcampaign/locations?q=)
func (s *Server) CampaignLocationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, err := s.api.SearchCities(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			if !s.state.Snapshot().IsAuthenticated {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"redirect": guards.LoginPath})
				return
			}
			log.Err(err).Msg("City search failed")
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": apiclient.MessageOf(err, "Location search failed")})
			return
		}
		if found == nil {
			found = []campaigns.Location{}
		}
		writeJSON(w, http.StatusOK, found)
	}
}

// attachUpload sends the optional creative file and records its id on the draft
func (s *Server) attachUpload(r *http.Request, draft *campaigns.Draft) error {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()
	if header.Size == 0 {
		return nil
	}

	id, err := s.api.UploadFile(r.Context(), header.Filename, file)
	if err != nil {
		return err
	}
	draft.FileID = id
	return nil
}

func (s *Server) renderPlatformStep(w http.ResponseWriter, status int, wiz campaigns.Wizard, errMsg string) {
	s.render(w, status, pageCreatePlatform, pageData{
		Title:      "Create Campaign",
		ActivePage: activeCampaigns,
		Error:      errMsg,
		Content: platformPage{
			Platforms: s.catalogue.Platforms,
			Selected:  wiz.Platform,
		},
	})
}

func (s *Server) renderDetailsStep(w http.ResponseWriter, r *http.Request, status int, draft campaigns.Draft, fields forms.FieldErrors, errMsg string) {
	platform, _ := s.catalogue.Lookup(draft.Platform)
	page := detailsPage{
		Platform:       platform,
		Draft:          draft,
		Total:          draft.TotalAmount(),
		MaxTitleLength: campaigns.MaxTitleLength,
	}

	opts, err := s.api.CampaignOptions(r.Context())
	if err != nil {
		if s.sessionEnded(w, r) {
			return
		}
		log.Err(err).Msg("Failed to load campaign options")
		if errMsg == "" {
			errMsg = apiclient.MessageOf(err, "Failed to load campaign options")
		}
	} else {
		page.Options = *opts
	}

	s.render(w, status, pageCreateDetails, pageData{
		Title:      "Create Campaign",
		ActivePage: activeCampaigns,
		Error:      errMsg,
		Fields:     fields,
		Form:       draft.Values(),
		Content:    page,
	})
}

// parseSubmission reads either form encoding, the details step is multipart
// because of the file input
func parseSubmission(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(maxUploadBytes)
	}
	return r.ParseForm()
}
