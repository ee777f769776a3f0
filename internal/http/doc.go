// Package http provides HTTP handlers and middleware for the booking API.
//
// Clients authenticate once via POST /login and then identify themselves on
// every other request with the `X-Actor-ID` header, which the RequireActor
// middleware resolves into a principal.
//
// The router exposes the following endpoint groups:
//   - POST /login: verifies credentials. Body: {"email","password"}. Response:
//     {"user": userDTO} whose ID becomes the caller's X-Actor-ID.
//   - /users: administrator controlled account management exchanging the
//     `userDTO` payload defined in user_handler.go. GET /users/{id}/invitations
//     lists a user's pending and answered invitations.
//   - /organizations: tenant management plus membership, building, room and
//     availability subresources. Mutations require admin privileges.
//   - /buildings, /floors: facility hierarchy endpoints defined in
//     facility_handler.go.
//   - /rooms: room catalog, usage rules and per-room availability projections
//     defined in room_handler.go. Availability accepts optional RFC 3339
//     `from`/`to` query parameters.
//   - /events: event management including recurrence occurrences, occurrence
//     exceptions, approval transitions, participants and invitations, defined
//     in event_handler.go. Event responses include advisory conflict warnings.
//   - POST /invitations/{id}/response: accepts or declines an invitation.
//
// Request/response DTOs live in dto.go and alongside their handlers so tests
// and documentation share the same ground truth.
package http
