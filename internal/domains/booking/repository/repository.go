package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"paradise/infras/otel"
	"paradise/infras/postgres"
	"paradise/internal/domains/booking/model"
	"paradise/shared/constant"
	gDto "paradise/shared/dto"
	"paradise/shared/logger"
	gRepo "paradise/shared/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Booking interface {
	CreateIfAvailable(ctx context.Context, booking model.Booking) (int64, []model.Booking, error)
	FindOverlapping(ctx context.Context, startDate, endDate time.Time, excludeID int64) ([]model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	SumPrice(ctx context.Context, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// OverlapFilter matches every stored range colliding with [startDate, endDate).
// Boundary contact is not a collision, checkout and check-in may share a day.
func OverlapFilter(startDate, endDate time.Time, excludeID int64) gDto.FilterGroup {
	filters := []any{
		gDto.Filter{
			ArgName:  "overlap_end",
			Field:    model.FieldStartDate,
			Value:    endDate,
			Operator: gDto.FilterOperatorLess,
			Table:    model.TableName,
		},
		gDto.Filter{
			ArgName:  "overlap_start",
			Field:    model.FieldEndDate,
			Value:    startDate,
			Operator: gDto.FilterOperatorGreater,
			Table:    model.TableName,
		},
	}

	if excludeID > 0 {
		filters = append(filters, gDto.Filter{
			ArgName:  "exclude_id",
			Field:    model.FieldID,
			Value:    excludeID,
			Operator: gDto.FilterOperatorNotEq,
			Table:    model.TableName,
		})
	}

	return gDto.FilterGroup{
		Filters:  filters,
		Operator: gDto.FilterGroupOperatorAnd,
	}
}

// IsDateOverlapViolation reports whether err is the bookings_no_overlap
// exclusion constraint rejecting an insert.
func IsDateOverlapViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == constant.PqErrorCodeExclusionViolation
}

func (repo *repositoryImpl) FindOverlapping(ctx context.Context, startDate, endDate time.Time, excludeID int64) ([]model.Booking, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.FindOverlapping")
	defer scope.End()

	params := gDto.QueryParams{
		SortBy:  model.FieldStartDate,
		SortDir: gDto.SortDirAsc,
	}

	return repo.Repository.GetAll(ctx, params, OverlapFilter(startDate, endDate, excludeID)) //nolint:wrapcheck
}

// CreateIfAvailable re-checks the requested range and inserts inside one
// transaction, so a booking can never land between check and insert. When the
// range is taken it returns the conflicting rows and no id.
func (repo *repositoryImpl) CreateIfAvailable(ctx context.Context, booking model.Booking) (id int64, conflicts []model.Booking, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.CreateIfAvailable")
	defer scope.End()
	defer scope.TraceIfError(err)

	tx, err := repo.db.Write.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		logger.ErrorWithStack(err)

		return 0, nil, fmt.Errorf("failed to begin transaction (%s): %w", model.EntityName, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	conflicts, err = repo.findOverlappingTx(ctx, tx, booking.StartDate, booking.EndDate)
	if err != nil {
		return 0, nil, err
	}

	if len(conflicts) > 0 {
		_ = tx.Rollback()

		return 0, conflicts, nil
	}

	id, err = repo.insertReturningID(ctx, tx, booking)
	if err != nil {
		// Another instance can slip past the row locks; the bookings_no_overlap
		// constraint rejects its insert here, so report a conflict, not a failure.
		if IsDateOverlapViolation(err) {
			_ = tx.Rollback()

			conflicts, err = repo.FindOverlapping(ctx, booking.StartDate, booking.EndDate, 0)
			if err != nil {
				return 0, nil, err
			}

			return 0, conflicts, nil
		}

		return 0, nil, err
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return 0, nil, fmt.Errorf("failed to commit transaction (%s): %w", model.EntityName, err)
	}

	return id, nil, nil
}

func (repo *repositoryImpl) findOverlappingTx(ctx context.Context, tx *sqlx.Tx, startDate, endDate time.Time) ([]model.Booking, error) {
	filter := OverlapFilter(startDate, endDate, 0)

	where, args := repo.BuildWhereClause(ctx, filter)

	query := fmt.Sprintf("SELECT %s FROM %s%s FOR UPDATE", strings.Join(selectColumns(), ", "), model.TableName, where)

	prepare, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	var conflicts []model.Booking

	if err := prepare.SelectContext(ctx, &conflicts, args); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}

	return conflicts, nil
}

func (repo *repositoryImpl) insertReturningID(ctx context.Context, tx *sqlx.Tx, booking model.Booking) (int64, error) {
	columns := []string{}
	placeholders := []string{}

	// id and created_at are owned by the database.
	for _, col := range repo.InsertColumns {
		if col == model.FieldID || col == model.FieldCreatedAt {
			continue
		}

		columns = append(columns, col)
		placeholders = append(placeholders, ":"+col)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		model.TableName,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		model.FieldID,
	)

	prepare, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return 0, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	var id int64

	if err := prepare.GetContext(ctx, &id, booking); err != nil {
		logger.ErrorWithStack(err)

		return 0, fmt.Errorf("failed to insert data (%s): %w", model.EntityName, err)
	}

	return id, nil
}

func (repo *repositoryImpl) SumPrice(ctx context.Context, filter gDto.FilterGroup) (int64, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.SumPrice")
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)

	query := fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) FROM %s%s", model.FieldPrice, model.TableName, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var total int64

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	if err := prepare.GetContext(ctx, &total, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to sum booking prices: %w", err)
	}

	return total, nil
}

func selectColumns() []string {
	return []string{
		model.FieldID,
		model.FieldGuestName,
		model.FieldGuestPhone,
		model.FieldStartDate,
		model.FieldEndDate,
		model.FieldBookingType,
		model.FieldPrice,
		model.FieldCreatedAt,
	}
}
