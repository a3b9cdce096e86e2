package app

import (
	"github.com/balanza/balanza/internal/event_bus"
	"github.com/balanza/balanza/internal/utils"
	"github.com/balanza/balanza/pkg/balance"
	"github.com/balanza/balanza/pkg/entry"
	"github.com/balanza/balanza/pkg/occurrence"
	"github.com/balanza/balanza/pkg/projection"
	"github.com/balanza/balanza/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	EntryRepo    entry.Repo
	EntryService entry.Service
	EntryHandler *entry.Handler

	OccurrenceService *occurrence.ServiceImpl
	OccurrenceHandler *occurrence.Handler

	BalanceRepo    balance.Repo
	BalanceService balance.Service
	BalanceHandler *balance.Handler

	ProjectionService projection.Service
	ProjectionHandler *projection.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()
	subscribeAnalytics(deps.Bus)

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.EntryRepo = entry.NewRepo(db)
	deps.EntryService = entry.NewService(deps.EntryRepo, deps.Bus)
	deps.EntryHandler = entry.NewHandler(deps.EntryService)

	deps.OccurrenceService = occurrence.NewService(deps.EntryRepo, deps.Bus)
	deps.OccurrenceHandler = occurrence.NewHandler(deps.OccurrenceService)

	deps.BalanceRepo = balance.NewRepo(db)
	deps.BalanceService = balance.NewService(deps.BalanceRepo)
	deps.BalanceHandler = balance.NewHandler(deps.BalanceService)

	deps.Clock = &utils.SystemClock{}
	deps.ProjectionService = projection.NewService(deps.BalanceService, deps.OccurrenceService, deps.Clock, deps.Bus)
	deps.ProjectionHandler = projection.NewHandler(deps.ProjectionService)

	return deps
}

// subscribeAnalytics attaches usage logging to the domain events. Handlers run
// synchronously but never fail the publishing operation.
func subscribeAnalytics(bus *event_bus.EventBus) {
	bus.Subscribe(event_bus.EntryCreated, logEntryMutation("created"))
	bus.Subscribe(event_bus.EntryUpdated, logEntryMutation("updated"))
	bus.Subscribe(event_bus.EntryDeleted, logEntryMutation("deleted"))
	bus.Subscribe(event_bus.ProjectionComputed, func(e event_bus.Event) error {
		if request, ok := e.Data.(event_bus.ProjectionRequest); ok {
			log.WithField("target_date", request.TargetDate.Format(utils.DateLayout)).Debug("projection computed")
		}
		return nil
	})
	bus.Subscribe(event_bus.OccurrencesExpanded, func(e event_bus.Event) error {
		if query, ok := e.Data.(event_bus.OccurrenceQuery); ok {
			log.WithFields(log.Fields{
				"from":    query.From.Format(utils.DateLayout),
				"to":      query.To.Format(utils.DateLayout),
				"results": query.Results,
			}).Debug("occurrence window expanded")
		}
		return nil
	})
}

func logEntryMutation(action string) func(event_bus.Event) error {
	return func(e event_bus.Event) error {
		mutation, ok := e.Data.(event_bus.EntryMutation)
		if !ok {
			return nil
		}
		fields := log.Fields{
			"series_id":       mutation.SeriesId,
			"entry_type":      mutation.EntryType,
			"recurrence_type": mutation.RecurrenceType,
			"scope":           mutation.Scope,
		}
		if mutation.SplitSeriesId != 0 {
			fields["split_series_id"] = mutation.SplitSeriesId
		}
		log.WithFields(fields).Infof("entry series %s", action)
		return nil
	}
}
