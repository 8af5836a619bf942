package database

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/types"
)

const insertPromptSet = "INSERT INTO prompt_sets (prompt_set_id, owner_id, title, versions, creation_ts, updated_ts) VALUES ($1, $2, $3, $4, $5, $6);"
const upsertPromptSet = "INSERT INTO prompt_sets (prompt_set_id, owner_id, title, versions, creation_ts, updated_ts) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (prompt_set_id) DO UPDATE SET owner_id = $2, title = $3, versions = $4, creation_ts = $5, updated_ts = $6;"
const selectPromptSetById = "SELECT prompt_set_id, owner_id, title, versions, creation_ts, updated_ts FROM prompt_sets WHERE prompt_set_id = $1;"
const selectPromptSetsByOwner = "SELECT prompt_set_id, owner_id, title, versions, creation_ts, updated_ts FROM prompt_sets WHERE owner_id = $1;"
const selectAllPromptSets = "SELECT prompt_set_id, owner_id, title, versions, creation_ts, updated_ts FROM prompt_sets;"

type promptSetsTableStatements struct {
	insertPromptSet         *sql.Stmt
	upsertPromptSet         *sql.Stmt
	selectPromptSetById     *sql.Stmt
	selectPromptSetsByOwner *sql.Stmt
	selectAllPromptSets     *sql.Stmt
}

type PromptSetsTable struct {
	statements *promptSetsTableStatements
}

func preparePromptSetsTable(db *sql.DB) (*PromptSetsTable, error) {
	var err error
	stmts := &promptSetsTableStatements{}

	if stmts.insertPromptSet, err = db.Prepare(insertPromptSet); err != nil {
		return nil, errors.New("error preparing insertPromptSet: " + err.Error())
	}
	if stmts.upsertPromptSet, err = db.Prepare(upsertPromptSet); err != nil {
		return nil, errors.New("error preparing upsertPromptSet: " + err.Error())
	}
	if stmts.selectPromptSetById, err = db.Prepare(selectPromptSetById); err != nil {
		return nil, errors.New("error preparing selectPromptSetById: " + err.Error())
	}
	if stmts.selectPromptSetsByOwner, err = db.Prepare(selectPromptSetsByOwner); err != nil {
		return nil, errors.New("error preparing selectPromptSetsByOwner: " + err.Error())
	}
	if stmts.selectAllPromptSets, err = db.Prepare(selectAllPromptSets); err != nil {
		return nil, errors.New("error preparing selectAllPromptSets: " + err.Error())
	}

	return &PromptSetsTable{statements: stmts}, nil
}

func (t *PromptSetsTable) Insert(ctx rcontext.RequestContext, set *types.PromptSet) error {
	versions, err := json.Marshal(set.Versions)
	if err != nil {
		return err
	}
	_, err = t.statements.insertPromptSet.ExecContext(ctx, set.Id, set.OwnerId, set.Title, versions, set.CreationTs, set.UpdatedTs)
	return err
}

func (t *PromptSetsTable) Upsert(ctx rcontext.RequestContext, set *types.PromptSet) error {
	versions, err := json.Marshal(set.Versions)
	if err != nil {
		return err
	}
	_, err = t.statements.upsertPromptSet.ExecContext(ctx, set.Id, set.OwnerId, set.Title, versions, set.CreationTs, set.UpdatedTs)
	return err
}

func (t *PromptSetsTable) GetById(ctx rcontext.RequestContext, id string) (*types.PromptSet, error) {
	row := t.statements.selectPromptSetById.QueryRowContext(ctx, id)
	set, err := scanPromptSet(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (t *PromptSetsTable) ListByOwner(ctx rcontext.RequestContext, ownerId string) ([]*types.PromptSet, error) {
	return t.scanSets(t.statements.selectPromptSetsByOwner.QueryContext(ctx, ownerId))
}

func (t *PromptSetsTable) ListAll(ctx rcontext.RequestContext) ([]*types.PromptSet, error) {
	return t.scanSets(t.statements.selectAllPromptSets.QueryContext(ctx))
}

func (t *PromptSetsTable) scanSets(rows *sql.Rows, err error) ([]*types.PromptSet, error) {
	results := make([]*types.PromptSet, 0)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return results, nil
		}
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		set, err := scanPromptSet(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, set)
	}

	return results, rows.Err()
}

func scanPromptSet(scan func(dest ...interface{}) error) (*types.PromptSet, error) {
	set := &types.PromptSet{}
	var versions []byte
	if err := scan(&set.Id, &set.OwnerId, &set.Title, &versions, &set.CreationTs, &set.UpdatedTs); err != nil {
		return nil, err
	}
	set.Versions = make([]*types.PromptVersion, 0)
	if len(versions) > 0 {
		if err := json.Unmarshal(versions, &set.Versions); err != nil {
			return nil, err
		}
	}
	return set, nil
}
