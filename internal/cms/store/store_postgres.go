package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"xs2gate/internal/authorization/models"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

// PostgresStore persists authorisations and business objects in PostgreSQL.
// The store is pure I/O; transition legality is decided by the orchestrator
// and only guarded here through the conditional UPDATE.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, auth *models.Authorisation) error {
	if auth == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "authorisation is required")
	}
	psu, methods, chosen, errInfo, err := marshalAuthorisation(auth)
	if err != nil {
		return err
	}

	// The WHERE NOT EXISTS guard enforces the one-active-authorisation rule
	// atomically under concurrent starts.
	query := `
		INSERT INTO sca_authorisations
			(id, business_object_id, kind, status, chosen_sca_approach, psu,
			 available_sca_methods, chosen_sca_method, sca_authentication_data,
			 error_info, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW()
		WHERE NOT EXISTS (
			SELECT 1 FROM sca_authorisations
			WHERE business_object_id = $2
			  AND status NOT IN ('FINALISED', 'FAILED', 'EXEMPTED')
		)
	`
	result, err := s.db.ExecContext(ctx, query,
		auth.ID.String(),
		auth.BusinessObjectID.String(),
		auth.Kind.String(),
		auth.Status.String(),
		auth.ChosenScaApproach.String(),
		psu, methods, chosen,
		auth.ScaAuthenticationData,
		errInfo,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "create authorisation")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "create authorisation rows affected")
	}
	if rows == 0 {
		return dErrors.New(dErrors.CodeConflict,
			"business object "+auth.BusinessObjectID.String()+" already has an active authorisation")
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.AuthorisationID) (*models.Authorisation, error) {
	query := `
		SELECT id, business_object_id, kind, status, chosen_sca_approach, psu,
		       available_sca_methods, chosen_sca_method, sca_authentication_data,
		       error_info, created_at, updated_at
		FROM sca_authorisations
		WHERE id = $1
	`
	auth, err := scanAuthorisation(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "authorisation "+id.String()+" not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find authorisation")
	}
	return auth, nil
}

func (s *PostgresStore) CompareAndSetStatus(ctx context.Context, auth *models.Authorisation, expected domain.ScaStatus) error {
	if auth == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "authorisation is required")
	}
	psu, methods, chosen, errInfo, err := marshalAuthorisation(auth)
	if err != nil {
		return err
	}

	query := `
		UPDATE sca_authorisations
		SET status = $3,
		    chosen_sca_approach = $4,
		    psu = $5,
		    available_sca_methods = $6,
		    chosen_sca_method = $7,
		    sca_authentication_data = $8,
		    error_info = $9,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	result, err := s.db.ExecContext(ctx, query,
		auth.ID.String(),
		expected.String(),
		auth.Status.String(),
		auth.ChosenScaApproach.String(),
		psu, methods, chosen,
		auth.ScaAuthenticationData,
		errInfo,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "compare and set authorisation status")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "compare and set rows affected")
	}
	if rows == 1 {
		return nil
	}

	// Zero rows: either the record vanished or a concurrent update won.
	var current string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM sca_authorisations WHERE id = $1`, auth.ID.String()).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return dErrors.New(dErrors.CodeNotFound, "authorisation "+auth.ID.String()+" not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "read current authorisation status")
	}
	return dErrors.New(dErrors.CodeConflict,
		"authorisation "+auth.ID.String()+" moved from "+expected.String()+" to "+current)
}

// PutBusinessObject seeds or replaces a business object.
func (s *PostgresStore) PutBusinessObject(ctx context.Context, obj *cmsmodels.BusinessObject) error {
	if obj == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "business object is required")
	}
	tpp, err := json.Marshal(obj.Tpp)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal tpp info")
	}
	query := `
		INSERT INTO business_objects
			(id, kind, status, tpp, all_available_accounts, recurring, multilevel_sca, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			tpp = EXCLUDED.tpp,
			all_available_accounts = EXCLUDED.all_available_accounts,
			recurring = EXCLUDED.recurring,
			multilevel_sca = EXCLUDED.multilevel_sca,
			updated_at = NOW()
	`
	_, err = s.db.ExecContext(ctx, query,
		obj.ID.String(), obj.Kind.String(), string(obj.Status), tpp,
		obj.AllAvailableAccounts, obj.Recurring, obj.MultilevelSca,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "put business object")
	}
	return nil
}

// BusinessObjects returns the business-object port view of the store.
func (s *PostgresStore) BusinessObjects() *PostgresBusinessObjects {
	return &PostgresBusinessObjects{db: s.db}
}

// PostgresBusinessObjects implements the business-object port.
type PostgresBusinessObjects struct {
	db *sql.DB
}

func (b *PostgresBusinessObjects) FindByID(ctx context.Context, id domain.BusinessObjectID) (*cmsmodels.BusinessObject, error) {
	query := `
		SELECT id, kind, status, tpp, all_available_accounts, recurring, multilevel_sca, created_at, updated_at
		FROM business_objects
		WHERE id = $1
	`
	var (
		obj     cmsmodels.BusinessObject
		rawID   string
		kind    string
		status  string
		tppJSON []byte
	)
	err := b.db.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID, &kind, &status, &tppJSON,
		&obj.AllAvailableAccounts, &obj.Recurring, &obj.MultilevelSca,
		&obj.CreatedAt, &obj.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "business object "+id.String()+" not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find business object")
	}

	obj.ID, err = domain.ParseBusinessObjectID(rawID)
	if err != nil {
		return nil, err
	}
	obj.Kind, err = domain.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	obj.Status = cmsmodels.Status(status)
	if len(tppJSON) > 0 {
		if err := json.Unmarshal(tppJSON, &obj.Tpp); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "unmarshal tpp info")
		}
	}
	return &obj, nil
}

func (b *PostgresBusinessObjects) UpdateStatus(ctx context.Context, id domain.BusinessObjectID, status cmsmodels.Status) error {
	result, err := b.db.ExecContext(ctx,
		`UPDATE business_objects SET status = $2, updated_at = NOW() WHERE id = $1`,
		id.String(), string(status),
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update business object status")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update business object rows affected")
	}
	if rows == 0 {
		return dErrors.New(dErrors.CodeNotFound, "business object "+id.String()+" not found")
	}
	return nil
}

func marshalAuthorisation(auth *models.Authorisation) (psu, methods, chosen, errInfo []byte, err error) {
	if psu, err = json.Marshal(auth.Psu); err != nil {
		return nil, nil, nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "marshal psu data")
	}
	if methods, err = json.Marshal(auth.AvailableScaMethods); err != nil {
		return nil, nil, nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "marshal sca methods")
	}
	if chosen, err = json.Marshal(auth.ChosenScaMethod); err != nil {
		return nil, nil, nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "marshal chosen method")
	}
	if errInfo, err = json.Marshal(auth.ErrorInfo); err != nil {
		return nil, nil, nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "marshal error info")
	}
	return psu, methods, chosen, errInfo, nil
}

type authorisationRow interface {
	Scan(dest ...any) error
}

func scanAuthorisation(row authorisationRow) (*models.Authorisation, error) {
	var (
		auth     models.Authorisation
		rawID    string
		rawObjID string
		kind     string
		status   string
		approach sql.NullString
		psu      []byte
		methods  []byte
		chosen   []byte
		errInfo  []byte
	)
	if err := row.Scan(
		&rawID, &rawObjID, &kind, &status, &approach,
		&psu, &methods, &chosen, &auth.ScaAuthenticationData,
		&errInfo, &auth.CreatedAt, &auth.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if auth.ID, err = domain.ParseAuthorisationID(rawID); err != nil {
		return nil, err
	}
	if auth.BusinessObjectID, err = domain.ParseBusinessObjectID(rawObjID); err != nil {
		return nil, err
	}
	if auth.Kind, err = domain.ParseKind(kind); err != nil {
		return nil, err
	}
	auth.Status = domain.ScaStatus(status)
	if approach.Valid && approach.String != "" {
		if auth.ChosenScaApproach, err = domain.ParseScaApproach(approach.String); err != nil {
			return nil, err
		}
	}

	if err := json.Unmarshal(psu, &auth.Psu); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "unmarshal psu data")
	}
	if err := json.Unmarshal(methods, &auth.AvailableScaMethods); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "unmarshal sca methods")
	}
	if err := json.Unmarshal(chosen, &auth.ChosenScaMethod); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "unmarshal chosen method")
	}
	if err := json.Unmarshal(errInfo, &auth.ErrorInfo); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "unmarshal error info")
	}
	return &auth, nil
}
