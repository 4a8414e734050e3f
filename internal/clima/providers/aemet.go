package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ibonuribe/clima-gateway/internal/clima"
	"github.com/ibonuribe/clima-gateway/internal/common"
	"github.com/ibonuribe/clima-gateway/internal/fault"
	"github.com/sony/gobreaker"
)

const defaultAEMETBaseURL = "https://opendata.aemet.es/opendata"

// aemetDateLayout is the timestamp format the daily climatology endpoint
// expects in its path segments.
const aemetDateLayout = "2006-01-02T15:04:05UTC"

// Station is one fixed observation point in the AEMET network.
type Station struct {
	ID   string `json:"indicativo"`
	Name string `json:"nombre"`
}

// AEMETClient reads station inventories and daily climatological records
// from the AEMET OpenData API. Every data endpoint answers with an envelope
// pointing at a second URL holding the actual payload, so each logical read
// is two GETs.
type AEMETClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	circuit *gobreaker.CircuitBreaker
}

func NewAEMETClient(client *http.Client, apiKey string) *AEMETClient {
	return &AEMETClient{
		client:  client,
		baseURL: defaultAEMETBaseURL,
		apiKey:  apiKey,
		circuit: newCircuit("aemet"),
	}
}

// Stations returns the full station inventory.
func (c *AEMETClient) Stations(ctx context.Context) ([]Station, error) {
	var stations []Station
	path := "/api/valores/climatologicos/inventarioestaciones/todasestaciones"
	if err := c.fetchInto(ctx, path, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

// FindStation picks the station for a location by case-insensitive substring
// match on the station name. Multiple stations can match; the first one in
// the inventory wins. That ambiguity is a known limitation of the lookup.
func (c *AEMETClient) FindStation(ctx context.Context, location string) (Station, error) {
	if location == "" {
		return Station{}, fault.New(fault.InvalidArgument, "location is required")
	}

	stations, err := c.Stations(ctx)
	if err != nil {
		return Station{}, err
	}
	for _, st := range stations {
		if common.ContainsFold(st.Name, location) {
			return st, nil
		}
	}
	return Station{}, fault.Newf(fault.NotFound, "no station matches %q", location)
}

// DailyRecords returns the daily climatological records for the station
// matching location, between from and to inclusive.
func (c *AEMETClient) DailyRecords(ctx context.Context, location string, from, to time.Time) ([]clima.HistoricalObservation, error) {
	station, err := c.FindStation(ctx, location)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/api/valores/climatologicos/diarios/datos/fechaini/%s/fechafin/%s/estacion/%s",
		from.UTC().Format(aemetDateLayout), to.UTC().Format(aemetDateLayout), url.PathEscape(station.ID))

	var records []aemetDailyRecord
	if err := c.fetchInto(ctx, path, &records); err != nil {
		return nil, err
	}

	observations := make([]clima.HistoricalObservation, 0, len(records))
	for _, r := range records {
		observations = append(observations, r.toObservation())
	}
	return observations, nil
}

// fetchInto performs the envelope GET, follows the datos URL and decodes the
// payload into out.
func (c *AEMETClient) fetchInto(ctx context.Context, path string, out any) error {
	if c.apiKey == "" {
		return fault.New(fault.Upstream, "aemet api key is not configured")
	}

	envelopeURL := fmt.Sprintf("%s%s?api_key=%s", c.baseURL, path, url.QueryEscape(c.apiKey))
	resp, err := doGet(ctx, c.client, c.circuit, envelopeURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope struct {
		Estado int    `json:"estado"`
		Datos  string `json:"datos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fault.Wrap(fault.Upstream, "decode aemet envelope", err)
	}
	if envelope.Estado != http.StatusOK || envelope.Datos == "" {
		return fault.Newf(fault.Upstream, "aemet envelope reported estado %d", envelope.Estado)
	}

	dataResp, err := doGet(ctx, c.client, c.circuit, envelope.Datos)
	if err != nil {
		return err
	}
	defer dataResp.Body.Close()

	if err := json.NewDecoder(dataResp.Body).Decode(out); err != nil {
		return fault.Wrap(fault.Upstream, "decode aemet payload", err)
	}
	return nil
}

// aemetDailyRecord mirrors the provider's daily climatology row. Numeric
// values arrive as strings with decimal commas; precipitation can also be
// "Ip" (trace amounts), which maps to nil.
type aemetDailyRecord struct {
	Fecha      string `json:"fecha"`
	Indicativo string `json:"indicativo"`
	Nombre     string `json:"nombre"`
	TMax       string `json:"tmax"`
	TMin       string `json:"tmin"`
	Prec       string `json:"prec"`
	VelMedia   string `json:"velmedia"`
	Dir        string `json:"dir"`
	HrMedia    string `json:"hrMedia"`
	PresMax    string `json:"presMax"`
	PresMin    string `json:"presMin"`
}

func (r aemetDailyRecord) toObservation() clima.HistoricalObservation {
	return clima.HistoricalObservation{
		StationID:     r.Indicativo,
		Location:      r.Nombre,
		Date:          r.Fecha,
		TempMax:       parseCommaDecimal(r.TMax),
		TempMin:       parseCommaDecimal(r.TMin),
		Precipitation: parseCommaDecimal(r.Prec),
		WindSpeed:     parseCommaDecimal(r.VelMedia),
		WindDirection: parseCommaDecimal(r.Dir),
		Humidity:      parseCommaDecimal(r.HrMedia),
		PressureMax:   parseCommaDecimal(r.PresMax),
		PressureMin:   parseCommaDecimal(r.PresMin),
	}
}

// parseCommaDecimal parses "12,3" style numerics. Empty or non-numeric
// values ("Ip", "Varias") become nil rather than zero.
func parseCommaDecimal(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}
