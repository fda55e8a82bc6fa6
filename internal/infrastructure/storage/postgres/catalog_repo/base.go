// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
// Every query is scoped by shop_id; an id from another shop behaves as missing.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain"
	"shopledger/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides common CRUD operations for shop-scoped catalog entities.
// Embed this in specific catalog repositories.
type BaseCatalogRepo[T domain.CatalogEntity] struct {
	txm        *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	searchCols []string
	newFn      func() T

	// uniqueErr maps a unique-constraint violation to a domain error.
	uniqueErr func(entity T, constraint string) error
}

// NewBaseCatalogRepo creates a new base catalog repository.
func NewBaseCatalogRepo[T domain.CatalogEntity](
	txm *postgres.TxManager,
	tableName, entityName string,
	selectCols, searchCols []string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		searchCols: searchCols,
		newFn:      newFn,
	}
}

// querier returns the transaction in ctx or the pool.
func (r *BaseCatalogRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.PickColumns(postgres.StructToMap(entity), r.selectCols)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	sql, args, err := postgres.Builder().
		Insert(r.tableName).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return r.mapWriteError(entity, err, "insert")
	}
	return nil
}

// Update writes the given columns with optimistic locking.
// The entity's version must match the stored one; on success it is bumped in memory too.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity T) error {
	return r.UpdateColumns(ctx, entity, r.selectCols)
}

// UpdateColumns is Update restricted to cols.
func (r *BaseCatalogRepo[T]) UpdateColumns(ctx context.Context, entity T, cols []string) error {
	data := postgres.StructToMap(entity)
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	set := postgres.PickColumns(data, cols, "id", "shop_id", "version", "created_at", "updated_at")

	sql, args, err := postgres.Builder().
		Update(r.tableName).
		SetMap(set).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entity.GetID(), "shop_id": entity.GetShopID(), "version": version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapWriteError(entity, err, "update")
	}
	if result.RowsAffected() == 0 {
		return r.missingOrStale(ctx, entity)
	}

	if t, ok := any(entity).(interface{ Touch() }); ok {
		t.Touch()
	}
	return nil
}

// missingOrStale tells a deleted row from a concurrent write.
func (r *BaseCatalogRepo[T]) missingOrStale(ctx context.Context, entity T) error {
	exists, err := r.Exists(ctx, entity.GetShopID(), entity.GetID())
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFound(r.entityName, entity.GetID().String())
	}
	return apperror.NewConcurrentModification(r.entityName, entity.GetID())
}

func (r *BaseCatalogRepo[T]) mapWriteError(entity T, err error, op string) error {
	if constraint, ok := postgres.IsUniqueViolation(err); ok && r.uniqueErr != nil {
		return r.uniqueErr(entity, constraint)
	}
	return fmt.Errorf("%s %s: %w", op, r.tableName, err)
}

// baseSelect creates a SELECT builder scoped to one shop.
func (r *BaseCatalogRepo[T]) baseSelect(shopID id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"shop_id": shopID})
}

// GetByID retrieves entity by ID.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, shopID, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.baseSelect(shopID).Where(squirrel.Eq{"id": entityID}).Limit(1), entityID.String())
}

// GetForUpdateOne retrieves entity by ID with row lock.
func (r *BaseCatalogRepo[T]) GetForUpdateOne(ctx context.Context, shopID, entityID id.ID) (T, error) {
	q := r.baseSelect(shopID).
		Where(squirrel.Eq{"id": entityID}).
		Suffix("FOR UPDATE")
	return r.FindOne(ctx, q, entityID.String())
}

// FindOne executes a SELECT query and returns a single entity.
func (r *BaseCatalogRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, key)
		}
		return entity, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return entity, nil
}

// FindMany executes a SELECT query and returns all rows.
func (r *BaseCatalogRepo[T]) FindMany(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.tableName, err)
	}
	return items, nil
}

// List retrieves entities with search and pagination.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	return r.ListWhere(ctx, filter, nil)
}

// ListWhere is List with an extra condition (e.g. kind = 'customer').
func (r *BaseCatalogRepo[T]) ListWhere(ctx context.Context, filter domain.ListFilter, extra squirrel.Sqlizer) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Items:  []T{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}

	q := r.listQuery(filter, extra)

	countSQL, countArgs, err := postgres.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy(orderBy, "id ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	items, err := r.FindMany(ctx, q)
	if err != nil {
		return result, err
	}
	if items != nil {
		result.Items = items
	}
	return result, nil
}

func (r *BaseCatalogRepo[T]) listQuery(filter domain.ListFilter, extra squirrel.Sqlizer) squirrel.SelectBuilder {
	q := r.baseSelect(filter.ShopID)
	if extra != nil {
		q = q.Where(extra)
	}
	if search := strings.TrimSpace(filter.Search); search != "" && len(r.searchCols) > 0 {
		pattern := "%" + search + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	return q
}

// Exists checks if entity exists in the shop.
func (r *BaseCatalogRepo[T]) Exists(ctx context.Context, shopID, entityID id.ID) (bool, error) {
	sql, args, err := postgres.Builder().
		Select("1").
		Prefix("SELECT EXISTS (").
		From(r.tableName).
		Where(squirrel.Eq{"id": entityID, "shop_id": shopID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return exists, nil
}

// Delete performs physical removal from the database.
// A foreign key violation is reported as the entity being in use.
func (r *BaseCatalogRepo[T]) Delete(ctx context.Context, shopID, entityID id.ID) error {
	sql, args, err := postgres.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": entityID, "shop_id": shopID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewConflict("Cannot delete "+r.entityName+": it is referenced by ledger records").
				WithDetail("entity", r.entityName).
				WithDetail("id", entityID.String()).
				WithCause(err)
		}
		return fmt.Errorf("execute delete %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

// SetColumns updates cols of a row already locked by the caller, bumping its version.
func (r *BaseCatalogRepo[T]) SetColumns(ctx context.Context, entity T, cols ...string) error {
	set := postgres.PickColumns(postgres.StructToMap(entity), cols)

	sql, args, err := postgres.Builder().
		Update(r.tableName).
		SetMap(set).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entity.GetID(), "shop_id": entity.GetShopID()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entity.GetID().String())
	}
	if t, ok := any(entity).(interface{ Touch() }); ok {
		t.Touch()
	}
	return nil
}

func (r *BaseCatalogRepo[T]) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols))
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}

	if orderBy == "" {
		return "name ASC", nil
	}

	// Support "-field" for DESC.
	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = toSnake(strings.TrimSpace(field))
	if field == "" {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}
	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy).WithDetail("field", field)
	}

	return field + " " + direction, nil
}

// toSnake accepts the JSON spelling of a column ("createdAt").
func toSnake(s string) string {
	var b strings.Builder
	for i, c := range s {
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(c + ('a' - 'A'))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
