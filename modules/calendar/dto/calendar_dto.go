package dto

// ========== Calendar Connection DTOs ==========

// ConnectionResponse is the settings-page view of a connection. Token
// material never leaves the service.
type ConnectionResponse struct {
	ID            string  `json:"id"`
	Provider      string  `json:"provider"`
	CalendarEmail string  `json:"calendarEmail"`
	CalendarName  string  `json:"calendarName"`
	ConnectedAt   string  `json:"connectedAt"`
	LastRefreshAt *string `json:"lastRefreshAt,omitempty"`
}

type ConnectionListResponse struct {
	Connections []ConnectionResponse `json:"connections"`
}

// ConnectResponse hands the provider consent URL to the SPA, which opens it
// itself. A 302 here would drop the bearer header.
type ConnectResponse struct {
	AuthURL string `json:"authUrl"`
}

// ========== Calendar Event DTOs ==========

// CreateEventRequest schedules an event against a domain resource on the
// user's connected calendar.
type CreateEventRequest struct {
	Provider            string `json:"provider"`
	ResourceID          string `json:"resourceId"`
	ResourceTitle       string `json:"resourceTitle"`
	ResourceURL         string `json:"resourceUrl"`
	ResourceDescription string `json:"resourceDescription"`
	EventDate           string `json:"eventDate"` // YYYY-MM-DD
	EventTime           string `json:"eventTime"` // HH:MM
	Duration            int    `json:"duration"`  // minutes, default 30
	Notes               string `json:"notes"`
	Timezone            string `json:"timezone"`
}

type CreateEventResponse struct {
	Success      bool   `json:"success"`
	EventID      string `json:"eventId"`
	EventURL     string `json:"eventUrl"`
	CalendarLink string `json:"calendarLink"`
}

type DeleteEventResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type DisconnectResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
