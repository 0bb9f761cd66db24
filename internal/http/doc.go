// Package http provides HTTP handlers and middleware for the court booking API.
//
// Every resource lives under a venue. The router exposes:
//   - GET /healthz: liveness check, always 200.
//   - GET /venues/{venueID}/courts, GET and PUT /venues/{venueID}/courts/{courtID}:
//     court catalog exchanging the `courtDTO` payload defined in court_handler.go.
//     PUT requires the admin key.
//   - GET /venues/{venueID}/courts/{courtID}/slots?date=YYYY-MM-DD and
//     GET /venues/{venueID}/courts/{courtID}/availability: per-slot past, booked
//     or available status for one day or the public booking week.
//   - GET /venues/{venueID}/reservations?from=&to=&court=: expanded calendar of
//     occurrences. Contact details of other clients are hidden unless the caller
//     is an admin.
//   - POST /venues/{venueID}/reservations, GET and PUT
//     /venues/{venueID}/reservations/{id}, POST .../{id}/cancel: reservation
//     lifecycle exchanging `reservationRequest` and `reservationDTO`. An id may
//     name a master or one of its occurrences (`<master>_<YYYY-MM-DD>`).
//   - GET /venues/{venueID}/profiles/{profileID}/upcoming: confirmed upcoming
//     occurrences of a client profile.
//   - GET /venues/{venueID}/occupancy/daily?date=&court= and
//     GET /venues/{venueID}/occupancy/monthly?month=YYYY-MM&court=: occupancy
//     rates for the dashboard.
//
// Callers identify themselves with `Authorization: Bearer <admin key>` or
// `X-Profile-ID: <profile>`. Requests without either are anonymous and may only
// read. Errors are returned as {"error_code","message","errors"}.
package http
