package database

import (
	"database/sql"
	"errors"

	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/types"
)

const insertMediaRecordIfAbsent = "INSERT INTO media_records (media_id, owner_id, url, source_prompt_set_id, source_version_id, creation_ts) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (media_id) DO NOTHING;"
const upsertMediaRecord = "INSERT INTO media_records (media_id, owner_id, url, source_prompt_set_id, source_version_id, creation_ts) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (media_id) DO UPDATE SET owner_id = $2, url = $3, source_prompt_set_id = $4, source_version_id = $5, creation_ts = $6;"
const selectMediaRecordById = "SELECT media_id, owner_id, url, source_prompt_set_id, source_version_id, creation_ts FROM media_records WHERE media_id = $1;"
const selectMediaRecordsByOwner = "SELECT media_id, owner_id, url, source_prompt_set_id, source_version_id, creation_ts FROM media_records WHERE owner_id = $1;"
const selectAllMediaRecords = "SELECT media_id, owner_id, url, source_prompt_set_id, source_version_id, creation_ts FROM media_records;"
const deleteMediaRecord = "DELETE FROM media_records WHERE media_id = $1;"

type mediaRecordsTableStatements struct {
	insertMediaRecordIfAbsent *sql.Stmt
	upsertMediaRecord         *sql.Stmt
	selectMediaRecordById     *sql.Stmt
	selectMediaRecordsByOwner *sql.Stmt
	selectAllMediaRecords     *sql.Stmt
	deleteMediaRecord         *sql.Stmt
}

type MediaRecordsTable struct {
	statements *mediaRecordsTableStatements
}

func prepareMediaRecordsTable(db *sql.DB) (*MediaRecordsTable, error) {
	var err error
	stmts := &mediaRecordsTableStatements{}

	if stmts.insertMediaRecordIfAbsent, err = db.Prepare(insertMediaRecordIfAbsent); err != nil {
		return nil, errors.New("error preparing insertMediaRecordIfAbsent: " + err.Error())
	}
	if stmts.upsertMediaRecord, err = db.Prepare(upsertMediaRecord); err != nil {
		return nil, errors.New("error preparing upsertMediaRecord: " + err.Error())
	}
	if stmts.selectMediaRecordById, err = db.Prepare(selectMediaRecordById); err != nil {
		return nil, errors.New("error preparing selectMediaRecordById: " + err.Error())
	}
	if stmts.selectMediaRecordsByOwner, err = db.Prepare(selectMediaRecordsByOwner); err != nil {
		return nil, errors.New("error preparing selectMediaRecordsByOwner: " + err.Error())
	}
	if stmts.selectAllMediaRecords, err = db.Prepare(selectAllMediaRecords); err != nil {
		return nil, errors.New("error preparing selectAllMediaRecords: " + err.Error())
	}
	if stmts.deleteMediaRecord, err = db.Prepare(deleteMediaRecord); err != nil {
		return nil, errors.New("error preparing deleteMediaRecord: " + err.Error())
	}

	return &MediaRecordsTable{statements: stmts}, nil
}

// UpsertIfAbsent is the insert-if-absent primitive behind deterministic-id
// dedup: two racing puts for the same (owner, url) pair converge on one row.
func (t *MediaRecordsTable) UpsertIfAbsent(ctx rcontext.RequestContext, record *types.MediaRecord) (bool, error) {
	res, err := t.statements.insertMediaRecordIfAbsent.ExecContext(ctx, record.Id, record.OwnerId, record.Url, record.SourcePromptSetId, record.SourceVersionId, record.CreationTs)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (t *MediaRecordsTable) Overwrite(ctx rcontext.RequestContext, record *types.MediaRecord) error {
	_, err := t.statements.upsertMediaRecord.ExecContext(ctx, record.Id, record.OwnerId, record.Url, record.SourcePromptSetId, record.SourceVersionId, record.CreationTs)
	return err
}

func (t *MediaRecordsTable) GetById(ctx rcontext.RequestContext, id string) (*types.MediaRecord, error) {
	row := t.statements.selectMediaRecordById.QueryRowContext(ctx, id)
	record := &types.MediaRecord{}
	err := row.Scan(&record.Id, &record.OwnerId, &record.Url, &record.SourcePromptSetId, &record.SourceVersionId, &record.CreationTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (t *MediaRecordsTable) ListByOwner(ctx rcontext.RequestContext, ownerId string) ([]*types.MediaRecord, error) {
	return t.scanRecords(t.statements.selectMediaRecordsByOwner.QueryContext(ctx, ownerId))
}

func (t *MediaRecordsTable) ListAll(ctx rcontext.RequestContext) ([]*types.MediaRecord, error) {
	return t.scanRecords(t.statements.selectAllMediaRecords.QueryContext(ctx))
}

func (t *MediaRecordsTable) Delete(ctx rcontext.RequestContext, id string) error {
	_, err := t.statements.deleteMediaRecord.ExecContext(ctx, id)
	return err
}

func (t *MediaRecordsTable) scanRecords(rows *sql.Rows, err error) ([]*types.MediaRecord, error) {
	results := make([]*types.MediaRecord, 0)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return results, nil
		}
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		record := &types.MediaRecord{}
		if err = rows.Scan(&record.Id, &record.OwnerId, &record.Url, &record.SourcePromptSetId, &record.SourceVersionId, &record.CreationTs); err != nil {
			return nil, err
		}
		results = append(results, record)
	}

	return results, rows.Err()
}
