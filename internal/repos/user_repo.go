package repos

import (
	"commerce/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) Create(u *domain.User) error {
	_, err := r.DB.Exec(`
		INSERT INTO users(id,username,email,first_name,last_name,password_hash)
		VALUES(?,?,?,?,?,?)
	`, u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.Hash)
	return err
}

func (r *UserRepo) ByUsername(username string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
		SELECT id,username,email,first_name,last_name,password_hash,created_at
		FROM users WHERE LOWER(username)=LOWER(?)
	`, username)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
		SELECT id,username,email,first_name,last_name,password_hash,created_at
		FROM users WHERE LOWER(email)=LOWER(?)
	`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
		SELECT id,username,email,first_name,last_name,password_hash,created_at
		FROM users WHERE id=?
	`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List() ([]domain.User, error) {
	var out []domain.User
	err := r.DB.Select(&out, `
		SELECT id,username,email,first_name,last_name,password_hash,created_at
		FROM users ORDER BY username
	`)
	return out, err
}
