package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kigurumiya/reserve-backend/internal/availability"
	"github.com/kigurumiya/reserve-backend/internal/calendar"
	"github.com/kigurumiya/reserve-backend/internal/inventory"
	"github.com/kigurumiya/reserve-backend/pkg/config"
	dberrors "github.com/kigurumiya/reserve-backend/pkg/db"
	"github.com/kigurumiya/reserve-backend/pkg/db/models"
	"github.com/kigurumiya/reserve-backend/pkg/enums"
	pkgerrors "github.com/kigurumiya/reserve-backend/pkg/errors"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
	"github.com/kigurumiya/reserve-backend/pkg/metrics"
	"github.com/kigurumiya/reserve-backend/pkg/pagination"
	"github.com/kigurumiya/reserve-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Notifier receives post-commit reservation events. Implementations must
// be best-effort: they are called after the transaction has committed and
// can never undo it.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, view ReservationView, remaining int, warningThreshold int)
	ReservationCancelled(ctx context.Context, view ReservationView)
}

// Service is the reservation ledger entry point.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*ReservationView, error)
	Cancel(ctx context.Context, input CancelInput) (*ReservationView, error)
	Lookup(ctx context.Context, input LookupInput) (*ReservationView, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReservationList, error)
}

type service struct {
	repo      Repository
	items     inventory.Repository
	overrides calendar.Repository
	tx        txRunner
	limiter   rateLimiter
	notifier  Notifier
	metrics   *metrics.ReservationMetrics
	logg      *logger.Logger
	cfg       config.ReservationConfig
	rules     availability.Rules
	now       func() time.Time
}

// NewService builds the reservation service.
func NewService(
	repo Repository,
	items inventory.Repository,
	overrides calendar.Repository,
	tx txRunner,
	limiter rateLimiter,
	notifier Notifier,
	reservationMetrics *metrics.ReservationMetrics,
	logg *logger.Logger,
	cfg config.ReservationConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if overrides == nil {
		return nil, fmt.Errorf("calendar repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		items:     items,
		overrides: overrides,
		tx:        tx,
		limiter:   limiter,
		notifier:  notifier,
		metrics:   reservationMetrics,
		logg:      logg,
		cfg:       cfg,
		rules:     availability.RulesFromConfig(cfg),
		now:       time.Now,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*ReservationView, error) {
	outcome := metrics.OutcomeError
	defer func() { s.metrics.IncAttempt(outcome) }()

	name := strings.TrimSpace(input.CustomerName)
	phone := strings.TrimSpace(input.Phone)
	email := strings.TrimSpace(input.Email)
	if name == "" || phone == "" || email == "" {
		outcome = metrics.OutcomeRejected
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name, phone and email are required")
	}
	date, err := types.ParseDate(input.Date)
	if err != nil {
		outcome = metrics.OutcomeRejected
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	itemID, err := uuid.Parse(input.ItemID)
	if err != nil {
		outcome = metrics.OutcomeRejected
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id")
	}

	if !input.StaffBooking {
		// One shared counter for every caller, then a per-phone one.
		if s.cfg.GlobalRateLimit > 0 {
			allowed, _, err := s.limiter.FixedWindowAllow(ctx, "submit:all", int64(s.cfg.GlobalRateLimit), s.cfg.RateLimitWindow)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check rate limit")
			}
			if !allowed {
				outcome = metrics.OutcomeRateLimited
				return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "the booking system is receiving too many requests, try again later")
			}
		}
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, "submit:"+phone, int64(s.cfg.RateLimit), s.cfg.RateLimitWindow)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check rate limit")
		}
		if !allowed {
			outcome = metrics.OutcomeRateLimited
			return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many reservation attempts, try again later")
		}
	}

	ctx = s.logg.WithItemID(ctx, itemID.String())
	ctx = s.logg.WithReservationDate(ctx, types.FormatDate(date))

	var view *ReservationView
	var remaining, threshold int

	lockStart := s.now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.applyLockTimeout(ctx, tx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set lock timeout")
		}

		// Serialization point: every writer touching this item queues here.
		item, err := s.items.WithTx(tx).FindByIDForUpdate(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome = metrics.OutcomeRejected
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			if dberrors.IsLockTimeout(err) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "booking system busy")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock rental item")
		}
		s.metrics.ObserveLockWait(s.now().Sub(lockStart).Seconds())

		if !item.IsActive {
			outcome = metrics.OutcomeRejected
			return pkgerrors.New(pkgerrors.CodeStateConflict, "this item is not currently offered")
		}

		asOf := s.now()
		if s.rules.TooSoon(asOf, date) {
			outcome = metrics.OutcomeRejected
			return pkgerrors.New(pkgerrors.CodeValidation, "the requested date is too soon or already past").
				WithDetails(map[string]any{"reason": "outside_window"})
		}
		if s.rules.TooFar(asOf, date) {
			outcome = metrics.OutcomeRejected
			return pkgerrors.New(pkgerrors.CodeValidation, "the requested date is beyond the booking horizon").
				WithDetails(map[string]any{"reason": "outside_window"})
		}
		if s.rules.IsBlackout(date) {
			outcome = metrics.OutcomeRejected
			return pkgerrors.New(pkgerrors.CodeValidation, "the shop is closed on that day").
				WithDetails(map[string]any{"reason": "blackout"})
		}

		if !input.StaffBooking {
			used, err := s.repo.WithTx(tx).CountActiveByPhoneAndDate(ctx, phone, date)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count phone reservations")
			}
			if used >= int64(s.cfg.DailyCapPerPhone) {
				outcome = metrics.OutcomeDailyCap
				return pkgerrors.New(pkgerrors.CodeStateConflict, "daily reservation limit reached for this phone number")
			}
		}

		if !input.Force {
			override, err := s.overrides.WithTx(tx).FindByItemAndDate(ctx, itemID, date)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load calendar override")
			}
			if err == nil && !override.IsAvailable {
				outcome = metrics.OutcomeSoldOut
				return pkgerrors.New(pkgerrors.CodeConflict, "that date is not available for this item").
					WithDetails(map[string]any{"reason": "date_unavailable"})
			}
		}

		activeCount, err := s.repo.WithTx(tx).CountActiveByItemAndDate(ctx, itemID, date)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active reservations")
		}
		if activeCount >= int64(item.TotalStock) {
			outcome = metrics.OutcomeSoldOut
			return pkgerrors.New(pkgerrors.CodeConflict, "all stock for that date is already reserved").
				WithDetails(map[string]any{"reason": "insufficient_stock"})
		}

		// Public submissions land as tentative holds awaiting staff
		// confirmation. Staff bookings are confirmed on the spot.
		status := enums.ReservationStatusPending
		if input.StaffBooking {
			status = enums.ReservationStatusConfirmed
		}
		created, err := s.insertWithFreshCode(ctx, tx, &models.Reservation{
			CustomerName: name,
			Phone:        phone,
			Email:        email,
			Date:         date,
			ItemID:       itemID,
			Status:       status,
			Notes:        strings.TrimSpace(input.Notes),
		})
		if err != nil {
			return err
		}

		if s.cfg.LegacyCalendarSync && activeCount+1 >= int64(item.TotalStock) {
			_, err := s.overrides.WithTx(tx).Upsert(ctx, &models.CalendarOverride{
				ItemID:      itemID,
				Date:        date,
				IsAvailable: false,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync calendar override")
			}
		}

		created.Item = item
		v := toView(created)
		view = &v
		remaining = item.TotalStock - int(activeCount) - 1
		threshold = item.WarningThreshold
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome = metrics.OutcomeConfirmed
	ctx = s.logg.WithConfirmationCode(ctx, view.ConfirmationCode)
	s.logg.Info(ctx, "reservation accepted")
	if s.notifier != nil {
		s.notifier.ReservationConfirmed(ctx, *view, remaining, threshold)
	}
	return view, nil
}

// insertWithFreshCode allocates a unique confirmation code and inserts the
// row, retrying on collisions up to the configured attempt budget.
func (s *service) insertWithFreshCode(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) (*models.Reservation, error) {
	repo := s.repo.WithTx(tx)
	attempts := s.cfg.CodeMaxAttempts
	if attempts <= 0 {
		attempts = 5
	}
	for i := 0; i < attempts; i++ {
		code, err := GenerateConfirmationCode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate confirmation code")
		}
		exists, err := repo.CodeExists(ctx, code)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check confirmation code")
		}
		if exists {
			continue
		}
		reservation.ConfirmationCode = code
		created, err := repo.Create(ctx, reservation)
		if err != nil {
			if dberrors.IsUniqueViolation(err, "idx_reservations_confirmation_code") {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert reservation")
		}
		return created, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a confirmation code")
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*ReservationView, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	phone := strings.TrimSpace(input.Phone)
	if code == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "confirmation code and phone are required")
	}

	var view *ReservationView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.applyLockTimeout(ctx, tx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set lock timeout")
		}

		reservation, err := s.repo.WithTx(tx).FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}
		if reservation.Phone != phone {
			// Do not reveal that the code exists.
			return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}

		// The override reset below shares state with concurrent bookings,
		// so cancellation takes the same item lock as submission.
		item, err := s.items.WithTx(tx).FindByIDForUpdate(ctx, reservation.ItemID)
		if err != nil {
			if dberrors.IsLockTimeout(err) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "booking system busy")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock rental item")
		}

		reservation, err = s.repo.WithTx(tx).FindByCode(ctx, code)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload reservation")
		}
		if !reservation.Status.IsActive() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation is already cancelled or completed")
		}
		today := types.NormalizeDate(s.now())
		if !types.NormalizeDate(reservation.Date).After(today) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reservations can only be cancelled before the rental date")
		}

		cancelledAt := s.now()
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, reservation.ID, enums.ReservationStatusCancelled, &cancelledAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel reservation")
		}

		if s.cfg.LegacyCalendarSync {
			if err := s.resetLegacyOverride(ctx, tx, reservation.ItemID, reservation.Date, item.TotalStock); err != nil {
				return err
			}
		}

		reservation.Status = enums.ReservationStatusCancelled
		reservation.CancelledAt = &cancelledAt
		reservation.Item = item
		v := toView(reservation)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCancellation()
	ctx = s.logg.WithConfirmationCode(ctx, view.ConfirmationCode)
	s.logg.Info(ctx, "reservation cancelled")
	if s.notifier != nil {
		s.notifier.ReservationCancelled(ctx, *view)
	}
	return view, nil
}

// resetLegacyOverride flips an auto-written unavailable override back to
// available once stock frees up. Runs inside the locked transaction.
func (s *service) resetLegacyOverride(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, date time.Time, totalStock int) error {
	override, err := s.overrides.WithTx(tx).FindByItemAndDate(ctx, itemID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load calendar override")
	}
	if override.IsAvailable {
		return nil
	}
	active, err := s.repo.WithTx(tx).CountActiveByItemAndDate(ctx, itemID, date)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active reservations")
	}
	if active >= int64(totalStock) {
		return nil
	}
	if _, err := s.overrides.WithTx(tx).Upsert(ctx, &models.CalendarOverride{
		ItemID:      itemID,
		Date:        date,
		IsAvailable: true,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset calendar override")
	}
	return nil
}

func (s *service) Lookup(ctx context.Context, input LookupInput) (*ReservationView, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	phone := strings.TrimSpace(input.Phone)
	if code == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "confirmation code and phone are required")
	}

	reservation, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	if reservation.Phone != phone {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
	}
	view := toView(reservation)
	return &view, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReservationList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return list, nil
}

// applyLockTimeout bounds how long the transaction may wait on the item
// row lock. Only meaningful on Postgres; test databases skip it.
func (s *service) applyLockTimeout(ctx context.Context, tx *gorm.DB) error {
	if tx == nil || tx.Dialector == nil || tx.Dialector.Name() != "postgres" {
		return nil
	}
	timeout := s.cfg.LockTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return tx.WithContext(ctx).
		Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())).Error
}
