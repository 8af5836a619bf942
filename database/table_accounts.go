package database

import (
	"database/sql"
	"errors"

	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/types"
)

const insertAccount = "INSERT INTO accounts (account_id, display_name, admin, creation_ts) VALUES ($1, $2, $3, $4) ON CONFLICT (account_id) DO NOTHING;"
const selectAccountById = "SELECT account_id, display_name, admin, creation_ts FROM accounts WHERE account_id = $1;"
const selectAccountExists = "SELECT TRUE FROM accounts WHERE account_id = $1 LIMIT 1;"

type accountsTableStatements struct {
	insertAccount       *sql.Stmt
	selectAccountById   *sql.Stmt
	selectAccountExists *sql.Stmt
}

type AccountsTable struct {
	statements *accountsTableStatements
}

func prepareAccountsTable(db *sql.DB) (*AccountsTable, error) {
	var err error
	stmts := &accountsTableStatements{}

	if stmts.insertAccount, err = db.Prepare(insertAccount); err != nil {
		return nil, errors.New("error preparing insertAccount: " + err.Error())
	}
	if stmts.selectAccountById, err = db.Prepare(selectAccountById); err != nil {
		return nil, errors.New("error preparing selectAccountById: " + err.Error())
	}
	if stmts.selectAccountExists, err = db.Prepare(selectAccountExists); err != nil {
		return nil, errors.New("error preparing selectAccountExists: " + err.Error())
	}

	return &AccountsTable{statements: stmts}, nil
}

func (t *AccountsTable) Insert(ctx rcontext.RequestContext, account *types.Account) error {
	_, err := t.statements.insertAccount.ExecContext(ctx, account.Id, account.DisplayName, account.Admin, account.CreationTs)
	return err
}

func (t *AccountsTable) GetById(ctx rcontext.RequestContext, id string) (*types.Account, error) {
	row := t.statements.selectAccountById.QueryRowContext(ctx, id)
	account := &types.Account{}
	err := row.Scan(&account.Id, &account.DisplayName, &account.Admin, &account.CreationTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (t *AccountsTable) Exists(ctx rcontext.RequestContext, id string) (bool, error) {
	row := t.statements.selectAccountExists.QueryRowContext(ctx, id)
	val := false
	err := row.Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val, nil
}
