package routes

import (
	"net/http"

	"github.com/JackRamey/MTGLeague/handlers"
	"github.com/JackRamey/MTGLeague/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes mounts the full API surface onto the router. Read-only
// resources are public; anything that creates or mutates state sits
// behind the authenticator.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	leagueHandler *handlers.LeagueHandler,
	eventHandler *handlers.EventHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", userHandler.GetUser)
		r.Get("/{userID}/standings", userHandler.GetUserStandings)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/me", userHandler.GetCurrentUser)
			r.Post("/avatar", userHandler.UploadAvatar)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.RequireAdmin)
			r.Delete("/{userID}", userHandler.DeleteUser)
		})
	})

	router.Route("/leagues", func(r chi.Router) {
		r.Get("/", leagueHandler.ListLeagues)
		r.Get("/{leagueID}", leagueHandler.GetLeague)
		r.Get("/{leagueID}/members", leagueHandler.ListMembers)
		r.Get("/{leagueID}/moderators", leagueHandler.ListModerators)
		r.Get("/{leagueID}/owners", leagueHandler.ListOwners)
		r.Get("/{leagueID}/posts", leagueHandler.ListPosts)
		r.Get("/{leagueID}/events", eventHandler.ListEvents)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/", leagueHandler.CreateLeague)
			r.Post("/{leagueID}/join", leagueHandler.JoinLeague)
			r.Post("/{leagueID}/members", leagueHandler.AddMember)
			r.Post("/{leagueID}/moderators", leagueHandler.AddModerator)
			r.Post("/{leagueID}/owners", leagueHandler.AddOwner)
			r.Post("/{leagueID}/posts", leagueHandler.CreatePost)
			r.Post("/{leagueID}/logo", leagueHandler.UploadLogo)
			r.Post("/{leagueID}/events", eventHandler.CreateEvent)
		})
	})

	router.Route("/events", func(r chi.Router) {
		r.Get("/{eventID}", eventHandler.GetEvent)
		r.Get("/{eventID}/stages", eventHandler.ListStages)
		r.Get("/{eventID}/participants", eventHandler.ListParticipants)
		r.Get("/{eventID}/standings", standingsHandler.GetEventStandings)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/{eventID}/stages", eventHandler.AddStage)
			r.Post("/{eventID}/join", eventHandler.JoinEvent)
			r.Post("/{eventID}/participants", eventHandler.AddParticipant)
		})
	})

	router.Route("/stages", func(r chi.Router) {
		r.Get("/{stageID}/matches", matchHandler.ListStageMatches)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/{stageID}/matches", matchHandler.CreateMatch)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetMatch)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Put("/{matchID}/results", matchHandler.SubmitResults)
		})
	})

	router.Route("/participants", func(r chi.Router) {
		r.Get("/{participantID}/standings", standingsHandler.GetParticipantStandings)
		r.Get("/{participantID}/matches", standingsHandler.GetParticipantMatches)
		r.Get("/{participantID}/win-percentage", standingsHandler.GetParticipantWinPercentage)
		r.Get("/{participantID}/opponent-win-percentage", standingsHandler.GetOpponentWinPercentage)
	})

	router.Get("/ws/events/{eventID}", webSocketHandler.ServeWs)
}
