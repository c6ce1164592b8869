package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuscare/complaint-service/internal/domain"
)

// ComplaintFilter captures listing parameters. A nil field means "no
// constraint"; the query layer forces SubmittedBy for owner-scoped listings.
type ComplaintFilter struct {
	SubmittedBy *string
	Status      *domain.ComplaintStatus
	Category    *domain.ComplaintCategory
	Priority    *domain.ComplaintPriority
	Search      *string
	Limit       int
	Offset      int
}

// OwnerPatch carries the fully merged field set written by an owner edit.
type OwnerPatch struct {
	Title       string
	Description string
	Category    domain.ComplaintCategory
	Priority    domain.ComplaintPriority
	Sentiment   *domain.SentimentAnalysis
}

// StatusPatch carries an admin transition. The whole patch is applied in a
// single UPDATE so concurrent transitions cannot lose writes.
type StatusPatch struct {
	Status     domain.ComplaintStatus
	AssignedTo *string
	Note       *domain.AdminNote
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	CountWithFilter(ctx context.Context, filter ComplaintFilter) (int64, error)
	// UpdateOwnerFields applies the patch only while the row is still owned by
	// ownerID and pending. Returns pgx.ErrNoRows when no row matched.
	UpdateOwnerFields(ctx context.Context, id, ownerID string, patch OwnerPatch) (*domain.Complaint, error)
	// ApplyStatusPatch updates status, optional assignment, resolved_at, and an
	// optional appended note as one conditional UPDATE matched by id.
	ApplyStatusPatch(ctx context.Context, id string, patch StatusPatch) (*domain.Complaint, error)
	AppendAdminNote(ctx context.Context, id string, note domain.AdminNote) (*domain.Complaint, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, title, description, category, priority, status, submitted_by, assigned_to,
               attachments, sentiment_analysis, admin_notes, resolved_at, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (title, description, category, priority, status, submitted_by, attachments, sentiment_analysis)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, admin_notes, created_at, updated_at`
	attachments := complaint.Attachments
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	return r.pool.QueryRow(ctx, query,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Priority,
		complaint.Status,
		complaint.SubmittedBy,
		attachments,
		complaint.Sentiment,
	).Scan(&complaint.ID, &complaint.AdminNotes, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE id=$1`, complaintColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *complaintRepository) UpdateOwnerFields(ctx context.Context, id, ownerID string, patch OwnerPatch) (*domain.Complaint, error) {
	query := fmt.Sprintf(`
        UPDATE complaints SET title=$1, description=$2, category=$3, priority=$4, sentiment_analysis=$5, updated_at=NOW()
        WHERE id=$6 AND submitted_by=$7 AND status=$8
        RETURNING %s`, complaintColumns)
	return r.fetchSingle(ctx, query,
		patch.Title,
		patch.Description,
		patch.Category,
		patch.Priority,
		patch.Sentiment,
		id,
		ownerID,
		domain.ComplaintStatusPending,
	)
}

func (r *complaintRepository) ApplyStatusPatch(ctx context.Context, id string, patch StatusPatch) (*domain.Complaint, error) {
	// resolved_at is stamped on entry into resolved and sticky on relapse;
	// the note rides the same statement so concurrent admins cannot clobber
	// each other's annotations.
	query := fmt.Sprintf(`
        UPDATE complaints SET
            status=$2,
            assigned_to=COALESCE($3, assigned_to),
            resolved_at=CASE WHEN $2='resolved' THEN NOW() ELSE resolved_at END,
            admin_notes=CASE WHEN $4::jsonb IS NULL THEN admin_notes ELSE admin_notes || $4::jsonb END,
            updated_at=NOW()
        WHERE id=$1
        RETURNING %s`, complaintColumns)

	var notes []domain.AdminNote
	if patch.Note != nil {
		notes = []domain.AdminNote{*patch.Note}
	}
	return r.fetchSingle(ctx, query, id, patch.Status, patch.AssignedTo, notes)
}

func (r *complaintRepository) AppendAdminNote(ctx context.Context, id string, note domain.AdminNote) (*domain.Complaint, error) {
	query := fmt.Sprintf(`
        UPDATE complaints SET admin_notes=admin_notes || $2::jsonb, updated_at=NOW()
        WHERE id=$1
        RETURNING %s`, complaintColumns)
	return r.fetchSingle(ctx, query, id, []domain.AdminNote{note})
}

func (r *complaintRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.Priority,
		&c.Status,
		&c.SubmittedBy,
		&c.AssignedTo,
		&c.Attachments,
		&c.Sentiment,
		&c.AdminNotes,
		&c.ResolvedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	clauses, args := buildComplaintClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		complaintColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) CountWithFilter(ctx context.Context, filter ComplaintFilter) (int64, error) {
	clauses, args := buildComplaintClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM complaints WHERE %s`, strings.Join(clauses, " AND "))

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func buildComplaintClauses(filter ComplaintFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SubmittedBy != nil {
		args = append(args, *filter.SubmittedBy)
		clauses = append(clauses, fmt.Sprintf("submitted_by=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	return clauses, args
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var c domain.Complaint
		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.Description,
			&c.Category,
			&c.Priority,
			&c.Status,
			&c.SubmittedBy,
			&c.AssignedTo,
			&c.Attachments,
			&c.Sentiment,
			&c.AdminNotes,
			&c.ResolvedAt,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
