package http

import (
	"log/slog"
	"net/http"
)

// RouterConfig collects the handlers and middleware the router mounts.
type RouterConfig struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Organizations *OrganizationHandler
	Facilities    *FacilityHandler
	Rooms         *RoomHandler
	Events        *EventHandler

	// Actors resolves the X-Actor-ID header for every authenticated route.
	Actors ActorResolver
	Logger *slog.Logger

	// Middleware wraps the whole router, first entry outermost.
	Middleware []func(http.Handler) http.Handler
}

// NewRouter mounts all endpoints. Every route except POST /login requires a
// resolvable X-Actor-ID header.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)

	protected := http.NewServeMux()

	protected.HandleFunc("POST /users", cfg.Users.Create)
	protected.HandleFunc("GET /users", cfg.Users.List)
	protected.HandleFunc("GET /users/{id}", cfg.Users.Get)
	protected.HandleFunc("PUT /users/{id}", cfg.Users.Update)
	protected.HandleFunc("DELETE /users/{id}", cfg.Users.Delete)
	protected.HandleFunc("GET /users/{id}/invitations", cfg.Events.ListUserInvitations)

	protected.HandleFunc("POST /organizations", cfg.Organizations.Create)
	protected.HandleFunc("GET /organizations", cfg.Organizations.List)
	protected.HandleFunc("GET /organizations/{id}", cfg.Organizations.Get)
	protected.HandleFunc("PUT /organizations/{id}", cfg.Organizations.Update)
	protected.HandleFunc("DELETE /organizations/{id}", cfg.Organizations.Delete)
	protected.HandleFunc("POST /organizations/{id}/members", cfg.Organizations.AddMember)
	protected.HandleFunc("GET /organizations/{id}/members", cfg.Organizations.ListMembers)
	protected.HandleFunc("DELETE /organizations/{id}/members/{userID}", cfg.Organizations.RemoveMember)
	protected.HandleFunc("POST /organizations/{id}/buildings", cfg.Facilities.CreateBuilding)
	protected.HandleFunc("GET /organizations/{id}/buildings", cfg.Facilities.ListBuildings)
	protected.HandleFunc("POST /organizations/{id}/rooms", cfg.Rooms.Create)
	protected.HandleFunc("GET /organizations/{id}/rooms", cfg.Rooms.ListForOrganization)
	protected.HandleFunc("GET /organizations/{id}/availability", cfg.Rooms.OrganizationAvailability)

	protected.HandleFunc("GET /buildings/{id}", cfg.Facilities.GetBuilding)
	protected.HandleFunc("PUT /buildings/{id}", cfg.Facilities.UpdateBuilding)
	protected.HandleFunc("DELETE /buildings/{id}", cfg.Facilities.DeleteBuilding)
	protected.HandleFunc("POST /buildings/{id}/floors", cfg.Facilities.CreateFloor)
	protected.HandleFunc("GET /buildings/{id}/floors", cfg.Facilities.ListFloors)

	protected.HandleFunc("GET /floors/{id}", cfg.Facilities.GetFloor)
	protected.HandleFunc("PUT /floors/{id}", cfg.Facilities.UpdateFloor)
	protected.HandleFunc("DELETE /floors/{id}", cfg.Facilities.DeleteFloor)
	protected.HandleFunc("GET /floors/{id}/rooms", cfg.Rooms.ListForFloor)

	protected.HandleFunc("GET /rooms/{id}", cfg.Rooms.Get)
	protected.HandleFunc("PUT /rooms/{id}", cfg.Rooms.Update)
	protected.HandleFunc("DELETE /rooms/{id}", cfg.Rooms.Delete)
	protected.HandleFunc("POST /rooms/{id}/rules", cfg.Rooms.CreateRule)
	protected.HandleFunc("GET /rooms/{id}/rules", cfg.Rooms.ListRules)
	protected.HandleFunc("DELETE /rooms/{id}/rules/{ruleID}", cfg.Rooms.DeleteRule)
	protected.HandleFunc("GET /rooms/{id}/availability", cfg.Rooms.Availability)

	protected.HandleFunc("POST /events", cfg.Events.Create)
	protected.HandleFunc("GET /events", cfg.Events.List)
	protected.HandleFunc("GET /events/{id}", cfg.Events.Get)
	protected.HandleFunc("PUT /events/{id}", cfg.Events.Update)
	protected.HandleFunc("DELETE /events/{id}", cfg.Events.Delete)
	protected.HandleFunc("POST /events/{id}/approval", cfg.Events.SetApproval)
	protected.HandleFunc("GET /events/{id}/occurrences", cfg.Events.ListOccurrences)
	protected.HandleFunc("PUT /events/{id}/exceptions", cfg.Events.PutException)
	protected.HandleFunc("GET /events/{id}/exceptions", cfg.Events.ListExceptions)
	protected.HandleFunc("DELETE /events/{id}/exceptions", cfg.Events.DeleteException)
	protected.HandleFunc("POST /events/{id}/participants", cfg.Events.AddParticipant)
	protected.HandleFunc("DELETE /events/{id}/participants/{userID}", cfg.Events.RemoveParticipant)
	protected.HandleFunc("POST /events/{id}/invitations", cfg.Events.Invite)
	protected.HandleFunc("GET /events/{id}/invitations", cfg.Events.ListInvitations)

	protected.HandleFunc("POST /invitations/{id}/response", cfg.Events.RespondToInvitation)

	root := http.NewServeMux()
	root.HandleFunc("POST /login", cfg.Auth.Login)
	root.Handle("/", RequireActor(cfg.Actors, logger)(protected))

	var handler http.Handler = root
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		handler = cfg.Middleware[i](handler)
	}
	return handler
}
