package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-adcampaign-dashboard/campaigns"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
)

const headerIdempotencyKey = "Idempotency-Key"

// CampaignOptions loads the choice lists for the campaign form
func (c *Client) CampaignOptions(ctx context.Context) (*campaigns.Options, error) {
	opts := campaigns.Options{}
	if _, err := c.doJSON(ctx, http.MethodGet, "/adcampaigns/options", nil, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// ListCampaigns returns the account's campaigns
func (c *Client) ListCampaigns(ctx context.Context) ([]campaigns.Campaign, error) {
	list := []campaigns.Campaign{}
	if _, err := c.doJSON(ctx, http.MethodGet, "/adcampaigns", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateCampaign submits a draft. The draft id is sent as the idempotency key
// so a resubmitted form does not create a second campaign.
func (c *Client) CreateCampaign(ctx context.Context, d campaigns.Draft) (*campaigns.Campaign, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Wrapf(err, "encode campaign")
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/adcampaigns", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.ID != "" {
		req.Header.Set(headerIdempotencyKey, d.ID)
	}

	var created campaigns.Campaign
	if _, err := c.do(req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

type uploadedFile struct {
	ID campaigns.ID `json:"id"`
}

// UploadFile stores a campaign asset and returns its id
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", errors.Wrapf(err, "create file part")
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", errors.Wrapf(err, "copy %s", filename)
	}
	if err := mw.Close(); err != nil {
		return "", errors.Wrapf(err, "close upload form")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/files", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var f uploadedFile
	if _, err := c.do(req, &f); err != nil {
		return "", err
	}
	if f.ID == "" {
		return "", errors.New("upload response has no file id")
	}
	return string(f.ID), nil
}

// SearchCities looks up audience locations. A blank query returns nothing
// without calling the API. Searches are throttled client side.
func (c *Client) SearchCities(ctx context.Context, query string) ([]campaigns.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []campaigns.Location{}, nil
	}
	if err := c.cities.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/locations/cities/search?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The search endpoint replies with a bare array; an enveloped reply is accepted too.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read city search")
	}
	locs := []campaigns.Location{}
	if err := json.Unmarshal(raw, &locs); err == nil {
		return locs, nil
	}
	var env struct {
		Data []campaigns.Location `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrapf(err, "decode city search")
	}
	if env.Data == nil {
		return []campaigns.Location{}, nil
	}
	return env.Data, nil
}
