package db

import (
	"database/sql"

	"talkd/models"
)

// User methods

func (db *DB) CreateUser(login, password, nickname string) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO users (login, password, nickname) VALUES (?, ?, ?)",
		login, password, nickname,
	)
	if err != nil {
		return 0, constraintErr(err)
	}
	return result.LastInsertId()
}

func (db *DB) GetUserByLogin(login string) (*models.User, error) {
	var u models.User
	err := db.conn.QueryRow(
		"SELECT id, login, password, nickname FROM users WHERE login = ?",
		login,
	).Scan(&u.ID, &u.Login, &u.Password, &u.Nickname)
	if err == sql.ErrNoRows {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) GetUserByID(id int64) (*models.User, error) {
	var u models.User
	err := db.conn.QueryRow(
		"SELECT id, login, password, nickname FROM users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Login, &u.Password, &u.Nickname)
	if err == sql.ErrNoRows {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) UpdateNickname(login, nickname string) error {
	result, err := db.conn.Exec(
		"UPDATE users SET nickname = ? WHERE login = ?",
		nickname, login,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNoRows
	}

	return nil
}

func (db *DB) UpdatePassword(login, password string) error {
	result, err := db.conn.Exec(
		"UPDATE users SET password = ? WHERE login = ?",
		password, login,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNoRows
	}

	return nil
}

// RenameUser replaces both login and password in a single statement so the
// re-salted credential can never be stored against the old login.
func (db *DB) RenameUser(oldLogin, newLogin, password string) error {
	result, err := db.conn.Exec(
		"UPDATE users SET login = ?, password = ? WHERE login = ?",
		newLogin, password, oldLogin,
	)
	if err != nil {
		return constraintErr(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNoRows
	}

	return nil
}

// SearchUsers finds users whose nickname contains searchText
// (case-insensitive), excluding the requesting login.
func (db *DB) SearchUsers(searchText, excludingLogin string) ([]models.FoundUser, error) {
	rows, err := db.conn.Query(
		"SELECT login, nickname FROM users WHERE nickname LIKE '%' || ? || '%' AND login <> ? ORDER BY login",
		searchText, excludingLogin,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.FoundUser
	for rows.Next() {
		var u models.FoundUser
		if err := rows.Scan(&u.Login, &u.Nickname); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
