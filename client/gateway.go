package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/clinical"
	"github.com/nutriagenda/scheduling-portal/internal/ibge"
	"github.com/nutriagenda/scheduling-portal/internal/notification"
	"github.com/nutriagenda/scheduling-portal/internal/pagination"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Details    string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api: %s (%d): %s", e.Code, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("api: %s (%d)", e.Code, e.StatusCode)
}

// Gateway is the stateless request layer. Every method takes a context and
// the Session; responses are decoded into the wire types.
type Gateway struct {
	httpClient *http.Client
}

func NewGateway(httpClient *http.Client) *Gateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gateway{httpClient: httpClient}
}

func (g *Gateway) do(ctx context.Context, sess Session, method, path string, query url.Values, body, out any) error {
	u := sess.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unknown"}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

// --- auth ---

type RegisterParams struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	CRF           string `json:"crf,omitempty"`
	AcceptsRemote bool   `json:"acceptsRemote,omitempty"`
}

func (g *Gateway) Register(ctx context.Context, baseURL string, params RegisterParams) (*AuthResult, error) {
	var out AuthResult
	sess := Session{BaseURL: baseURL}
	if err := g.do(ctx, sess, http.MethodPost, "/auth/register", nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) Login(ctx context.Context, baseURL, email, password string) (*AuthResult, error) {
	var out AuthResult
	sess := Session{BaseURL: baseURL}
	body := map[string]string{"email": email, "password": password}
	if err := g.do(ctx, sess, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- calendar / schedules ---

func (g *Gateway) Calendar(ctx context.Context, sess Session, startDate, endDate time.Time) ([]CalendarEvent, error) {
	q := url.Values{}
	q.Set("startDate", startDate.Format("2006-01-02"))
	q.Set("endDate", endDate.Format("2006-01-02"))

	var out []CalendarEvent
	if err := g.do(ctx, sess, http.MethodGet, "/nutritionists/me/schedules", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) CreateSchedule(ctx context.Context, sess Session, start time.Time, durationMinutes int) (*CalendarEvent, error) {
	body := map[string]any{
		"startLocalDateTime": start.Format("2006-01-02T15:04:05"),
		"durationMinutes":    durationMinutes,
	}
	var out CalendarEvent
	if err := g.do(ctx, sess, http.MethodPost, "/nutritionists/me/schedules", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) DeleteSchedule(ctx context.Context, sess Session, scheduleID uuid.UUID) error {
	return g.do(ctx, sess, http.MethodDelete, "/nutritionists/me/schedules/"+scheduleID.String(), nil, nil, nil)
}

// --- appointments ---

type BookParams struct {
	PatientID  string  `json:"patientId,omitempty"`
	IsRemote   bool    `json:"isRemote"`
	LocationID *string `json:"locationId,omitempty"`
}

func (g *Gateway) Book(ctx context.Context, sess Session, scheduleID uuid.UUID, params BookParams) (*CalendarEvent, error) {
	var out CalendarEvent
	path := "/appointments/schedules/" + scheduleID.String()
	if err := g.do(ctx, sess, http.MethodPost, path, nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) RequestConfirmation(ctx context.Context, sess Session, appointmentID uuid.UUID) error {
	return g.do(ctx, sess, http.MethodPatch, "/appointments/"+appointmentID.String()+"/request-confirmation", nil, nil, nil)
}

func (g *Gateway) Confirm(ctx context.Context, sess Session, appointmentID uuid.UUID) error {
	return g.do(ctx, sess, http.MethodPatch, "/appointments/"+appointmentID.String()+"/confirm", nil, nil, nil)
}

func (g *Gateway) Finish(ctx context.Context, sess Session, appointmentID uuid.UUID, attended bool) error {
	q := url.Values{}
	q.Set("attended", strconv.FormatBool(attended))
	return g.do(ctx, sess, http.MethodPatch, "/appointments/"+appointmentID.String()+"/finish", q, nil, nil)
}

// CancelAsPatient and CancelAsNutritionist hit the role-scoped cancel
// endpoints; the server validates the caller is a party to the appointment.
func (g *Gateway) CancelAsPatient(ctx context.Context, sess Session, appointmentID uuid.UUID) error {
	return g.do(ctx, sess, http.MethodPost, "/patients/me/appointments/"+appointmentID.String(), nil, nil, nil)
}

func (g *Gateway) CancelAsNutritionist(ctx context.Context, sess Session, appointmentID uuid.UUID) error {
	return g.do(ctx, sess, http.MethodPost, "/nutritionists/me/appointments/"+appointmentID.String(), nil, nil, nil)
}

func (g *Gateway) DeletePermanently(ctx context.Context, sess Session, appointmentID uuid.UUID) error {
	return g.do(ctx, sess, http.MethodDelete, "/nutritionists/me/appointments/"+appointmentID.String(), nil, nil, nil)
}

func (g *Gateway) MyAppointments(ctx context.Context, sess Session, page, size int) (*pagination.Page[CalendarEvent], error) {
	var out pagination.Page[CalendarEvent]
	if err := g.do(ctx, sess, http.MethodGet, "/nutritionists/me/appointments", pageQuery(page, size), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) MyFutureAppointments(ctx context.Context, sess Session, page, size int) (*pagination.Page[CalendarEvent], error) {
	var out pagination.Page[CalendarEvent]
	if err := g.do(ctx, sess, http.MethodGet, "/appointments/patient/future", pageQuery(page, size), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- roster / patient search ---

func (g *Gateway) Roster(ctx context.Context, sess Session, page, size int) (*pagination.Page[RosterEntry], error) {
	var out pagination.Page[RosterEntry]
	if err := g.do(ctx, sess, http.MethodGet, "/nutritionists/me/patients", pageQuery(page, size), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) AddToRoster(ctx context.Context, sess Session, patientID uuid.UUID) error {
	body := map[string]string{"patientId": patientID.String()}
	return g.do(ctx, sess, http.MethodPost, "/nutritionists/me/patients", nil, body, nil)
}

func (g *Gateway) SearchScheduledPatients(ctx context.Context, sess Session, name string, page, size int) (*pagination.Page[RosterEntry], error) {
	q := pageQuery(page, size)
	q.Set("name", name)

	var out pagination.Page[RosterEntry]
	if err := g.do(ctx, sess, http.MethodGet, "/nutritionists/me/patients/scheduled", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) SearchPatients(ctx context.Context, sess Session, name string) ([]scheduling.Participant, error) {
	q := url.Values{}
	q.Set("name", name)

	var out []scheduling.Participant
	if err := g.do(ctx, sess, http.MethodGet, "/patients/search", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- nutritionist search / profile ---

type NutritionistSearch struct {
	Name          string
	IBGEState     string
	IBGECity      string
	AcceptsRemote *bool
}

func (g *Gateway) SearchNutritionists(ctx context.Context, sess Session, params NutritionistSearch, page, size int) (*pagination.Page[NutritionistResult], error) {
	q := pageQuery(page, size)
	if params.Name != "" {
		q.Set("nutritionistName", params.Name)
	}
	if params.IBGEState != "" {
		q.Set("ibgeApiState", params.IBGEState)
	}
	if params.IBGECity != "" {
		q.Set("ibgeApiCity", params.IBGECity)
	}
	if params.AcceptsRemote != nil {
		q.Set("acceptsRemote", strconv.FormatBool(*params.AcceptsRemote))
	}

	var out pagination.Page[NutritionistResult]
	if err := g.do(ctx, sess, http.MethodGet, "/nutritionists/search", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) Profile(ctx context.Context, sess Session) (*Profile, error) {
	var out Profile
	if err := g.do(ctx, sess, http.MethodGet, "/nutritionists/me/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ProfileUpdate struct {
	Name          string `json:"name"`
	CRF           string `json:"crf"`
	AcceptsRemote bool   `json:"acceptsRemote"`
}

func (g *Gateway) UpdateProfile(ctx context.Context, sess Session, update ProfileUpdate) (*Profile, error) {
	var out Profile
	if err := g.do(ctx, sess, http.MethodPut, "/nutritionists/me/", nil, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) Locations(ctx context.Context, sess Session) ([]Location, error) {
	var out []Location
	if err := g.do(ctx, sess, http.MethodGet, "/nutritionists/me/locations", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- notifications ---

func (g *Gateway) Notifications(ctx context.Context, sess Session, page, size int) (*pagination.Page[notification.Notification], error) {
	var out pagination.Page[notification.Notification]
	if err := g.do(ctx, sess, http.MethodGet, "/notifications", pageQuery(page, size), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) MarkNotificationRead(ctx context.Context, sess Session, id uuid.UUID) error {
	return g.do(ctx, sess, http.MethodPatch, "/notifications/"+id.String()+"/read", nil, nil, nil)
}

// --- clinical ---

func (g *Gateway) ClinicalMasterData(ctx context.Context, sess Session) (*clinical.MasterData, error) {
	var out clinical.MasterData
	if err := g.do(ctx, sess, http.MethodGet, "/clinical-information/master-data", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) ClinicalForm(ctx context.Context, sess Session, patientID uuid.UUID) (*clinical.Form, error) {
	var out clinical.Form
	path := "/patients/" + patientID.String() + "/clinical-information"
	if err := g.do(ctx, sess, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) SaveClinicalForm(ctx context.Context, sess Session, patientID uuid.UUID, form *clinical.Form) (*clinical.Form, error) {
	var out clinical.Form
	path := "/patients/" + patientID.String() + "/clinical-information"
	if err := g.do(ctx, sess, http.MethodPost, path, nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- regions ---

func (g *Gateway) States(ctx context.Context, sess Session) ([]ibge.State, error) {
	var out []ibge.State
	if err := g.do(ctx, sess, http.MethodGet, "/regions/states", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) Cities(ctx context.Context, sess Session, uf string) ([]ibge.City, error) {
	var out []ibge.City
	if err := g.do(ctx, sess, http.MethodGet, "/regions/states/"+uf+"/cities", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
