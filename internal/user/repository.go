package user

import "gorm.io/gorm"

type Repository interface {
	CreateUser(user *User) error
	FindByID(id string) (*User, error)
	FindByEmail(email string) (*User, error)

	// ApplyBalanceDelta is the single write path for the authoritative
	// balance scalar.
	ApplyBalanceDelta(id string, delta float64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(user *User) error {
	return r.db.Create(user).Error
}

func (r *repository) FindByID(id string) (*User, error) {
	var user User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByEmail(email string) (*User, error) {
	var user User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) ApplyBalanceDelta(id string, delta float64) error {
	return r.db.Model(&User{}).
		Where("id = ?", id).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta)).Error
}
