package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/herbarium/florasync/internal/core/domain"
	"github.com/herbarium/florasync/internal/infra/storage"
)

// HerbRepo implements storage.HerbRepository using PostgreSQL.
type HerbRepo struct {
	db *DB
}

// NewHerbRepo creates a new PostgreSQL herb repository.
func NewHerbRepo(db *DB) *HerbRepo {
	return &HerbRepo{db: db}
}

type herbRow struct {
	ID             string         `db:"id"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	ScientificName string         `db:"scientific_name"`
	Family         string         `db:"family"`
	Genus          string         `db:"genus"`
	Species        string         `db:"species"`
	Synonyms       pq.StringArray `db:"synonyms"`
	Origins        pq.StringArray `db:"origins"`
	TrefleID       sql.NullInt64  `db:"trefle_id"`
	PerenualID     sql.NullInt64  `db:"perenual_id"`
	TrefleData     []byte         `db:"trefle_data"`
	PerenualData   []byte         `db:"perenual_data"`
	LastSynced     []byte         `db:"last_synced"`
	Cultivation    []byte         `db:"cultivation"`
	Gallery        []byte         `db:"gallery"`
	Warnings       pq.StringArray `db:"warnings"`
	Toxicity       string         `db:"toxicity"`
	Edible         bool           `db:"edible"`
	Medicinal      bool           `db:"medicinal"`
	Status         string         `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

const herbColumns = `id, title, description, scientific_name, family, genus, species,
	synonyms, origins, trefle_id, perenual_id, trefle_data, perenual_data, last_synced,
	cultivation, gallery, warnings, toxicity, edible, medicinal, status,
	created_at, updated_at`

// Create persists a new herb and returns it with its ID assigned.
func (r *HerbRepo) Create(ctx context.Context, herb *domain.Herb) (*domain.Herb, error) {
	row, err := toRow(herb)
	if err != nil {
		return nil, err
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now()
	row.CreatedAt = now
	row.UpdatedAt = now

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO herbs (`+herbColumns+`)
		VALUES (:id, :title, :description, :scientific_name, :family, :genus, :species,
			:synonyms, :origins, :trefle_id, :perenual_id, :trefle_data, :perenual_data, :last_synced,
			:cultivation, :gallery, :warnings, :toxicity, :edible, :medicinal, :status,
			:created_at, :updated_at)`, row)
	if err != nil {
		return nil, fmt.Errorf("failed to create herb: %w", err)
	}
	return fromRow(row)
}

// Update replaces the stored herb with the given ID.
func (r *HerbRepo) Update(ctx context.Context, id string, herb *domain.Herb) (*domain.Herb, error) {
	row, err := toRow(herb)
	if err != nil {
		return nil, err
	}
	row.ID = id
	row.UpdatedAt = time.Now()

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE herbs SET
			title = :title,
			description = :description,
			scientific_name = :scientific_name,
			family = :family,
			genus = :genus,
			species = :species,
			synonyms = :synonyms,
			origins = :origins,
			trefle_id = :trefle_id,
			perenual_id = :perenual_id,
			trefle_data = :trefle_data,
			perenual_data = :perenual_data,
			last_synced = :last_synced,
			cultivation = :cultivation,
			gallery = :gallery,
			warnings = :warnings,
			toxicity = :toxicity,
			edible = :edible,
			medicinal = :medicinal,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return nil, fmt.Errorf("failed to update herb: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, storage.ErrHerbNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a herb by ID.
func (r *HerbRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM herbs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete herb: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return storage.ErrHerbNotFound
	}
	return nil
}

// GetByID retrieves a herb by ID.
func (r *HerbRepo) GetByID(ctx context.Context, id string) (*domain.Herb, error) {
	var row herbRow
	err := r.db.GetContext(ctx, &row, `SELECT `+herbColumns+` FROM herbs WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get herb: %w", err)
	}
	return fromRow(&row)
}

// GetBySourceID retrieves a herb by provider-specific ID.
func (r *HerbRepo) GetBySourceID(
	ctx context.Context,
	source domain.Source,
	sourceID int,
) (*domain.Herb, error) {
	var column string
	switch source {
	case domain.SourceTrefle:
		column = "trefle_id"
	case domain.SourcePerenual:
		column = "perenual_id"
	default:
		return nil, fmt.Errorf("unknown source: %s", source)
	}

	var row herbRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+herbColumns+` FROM herbs WHERE `+column+` = $1`, sourceID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get herb by source id: %w", err)
	}
	return fromRow(&row)
}

// GetByTitle retrieves a herb by exact title.
func (r *HerbRepo) GetByTitle(ctx context.Context, title string) (*domain.Herb, error) {
	var row herbRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+herbColumns+` FROM herbs WHERE title = $1 LIMIT 1`, title)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get herb by title: %w", err)
	}
	return fromRow(&row)
}

// List retrieves up to limit herbs ordered by creation time.
func (r *HerbRepo) List(ctx context.Context, limit int) ([]*domain.Herb, error) {
	query := `SELECT ` + herbColumns + ` FROM herbs ORDER BY created_at, id`
	var rows []herbRow
	var err error
	if limit > 0 {
		err = r.db.SelectContext(ctx, &rows, query+` LIMIT $1`, limit)
	} else {
		err = r.db.SelectContext(ctx, &rows, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list herbs: %w", err)
	}

	herbs := make([]*domain.Herb, 0, len(rows))
	for i := range rows {
		herb, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		herbs = append(herbs, herb)
	}
	return herbs, nil
}

func toRow(h *domain.Herb) (*herbRow, error) {
	row := &herbRow{
		ID:             h.ID,
		Title:          h.Title,
		Description:    h.Description,
		ScientificName: h.Botanical.ScientificName,
		Family:         h.Botanical.Family,
		Genus:          h.Botanical.Genus,
		Species:        h.Botanical.Species,
		Synonyms:       pq.StringArray(h.Botanical.Synonyms),
		Origins:        pq.StringArray(h.Botanical.Origin),
		TrefleData:     h.Botanical.TrefleData,
		PerenualData:   h.Botanical.PerenualData,
		Warnings:       pq.StringArray(h.Safety.Warnings),
		Toxicity:       h.Safety.Toxicity,
		Edible:         h.Safety.Edible,
		Medicinal:      h.Safety.Medicinal,
		Status:         string(h.Status),
		CreatedAt:      h.CreatedAt,
		UpdatedAt:      h.UpdatedAt,
	}
	if row.Synonyms == nil {
		row.Synonyms = pq.StringArray{}
	}
	if row.Origins == nil {
		row.Origins = pq.StringArray{}
	}
	if row.Warnings == nil {
		row.Warnings = pq.StringArray{}
	}
	if h.Botanical.TrefleID != nil {
		row.TrefleID = sql.NullInt64{Int64: int64(*h.Botanical.TrefleID), Valid: true}
	}
	if h.Botanical.PerenualID != nil {
		row.PerenualID = sql.NullInt64{Int64: int64(*h.Botanical.PerenualID), Valid: true}
	}

	var err error
	if len(h.Botanical.LastSynced) > 0 {
		if row.LastSynced, err = json.Marshal(h.Botanical.LastSynced); err != nil {
			return nil, fmt.Errorf("failed to encode last_synced: %w", err)
		}
	}
	if h.Cultivation != nil {
		if row.Cultivation, err = json.Marshal(h.Cultivation); err != nil {
			return nil, fmt.Errorf("failed to encode cultivation: %w", err)
		}
	}
	if len(h.Gallery) > 0 {
		if row.Gallery, err = json.Marshal(h.Gallery); err != nil {
			return nil, fmt.Errorf("failed to encode gallery: %w", err)
		}
	}
	return row, nil
}

func fromRow(row *herbRow) (*domain.Herb, error) {
	herb := &domain.Herb{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Botanical: domain.BotanicalInfo{
			ScientificName: row.ScientificName,
			Family:         row.Family,
			Genus:          row.Genus,
			Species:        row.Species,
			Synonyms:       []string(row.Synonyms),
			Origin:         []string(row.Origins),
			TrefleData:     row.TrefleData,
			PerenualData:   row.PerenualData,
		},
		Safety: domain.SafetyInfo{
			Warnings:  []string(row.Warnings),
			Toxicity:  row.Toxicity,
			Edible:    row.Edible,
			Medicinal: row.Medicinal,
		},
		Status:    domain.Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.TrefleID.Valid {
		v := int(row.TrefleID.Int64)
		herb.Botanical.TrefleID = &v
	}
	if row.PerenualID.Valid {
		v := int(row.PerenualID.Int64)
		herb.Botanical.PerenualID = &v
	}
	if len(row.LastSynced) > 0 {
		if err := json.Unmarshal(row.LastSynced, &herb.Botanical.LastSynced); err != nil {
			return nil, fmt.Errorf("failed to decode last_synced: %w", err)
		}
	}
	if len(row.Cultivation) > 0 {
		herb.Cultivation = &domain.Cultivation{}
		if err := json.Unmarshal(row.Cultivation, herb.Cultivation); err != nil {
			return nil, fmt.Errorf("failed to decode cultivation: %w", err)
		}
	}
	if len(row.Gallery) > 0 {
		if err := json.Unmarshal(row.Gallery, &herb.Gallery); err != nil {
			return nil, fmt.Errorf("failed to decode gallery: %w", err)
		}
	}
	return herb, nil
}
