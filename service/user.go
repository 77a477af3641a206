package service

import (
	"gallery/db"
	"gallery/models"
	"gallery/utils"

	"gorm.io/gorm"
)

// RegisterUser validates and creates the account together with its
// protected default album
func RegisterUser(username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, badRequest("missing username, email or password")
	}
	if !utils.CheckUsername(username) {
		return nil, invalidValue("invalid username")
	}
	if !utils.CheckEmail(email) {
		return nil, invalidValue("invalid email")
	}
	if !utils.CheckPassword(password) {
		return nil, invalidValue("invalid password")
	}
	user := models.User{
		Username: username,
		Email:    email,
	}
	user.SetPassword(password)
	err := db.Instance.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.User{}).
			Where("username = ? or email = ?", username, email).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return conflict("user already exists")
		}
		if err = tx.Create(&user).Error; err != nil {
			return err
		}
		_, err = CreateDefaultAlbum(tx, &user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// LoginUser resolves credentials to a user. Either username or email works.
func LoginUser(username, email, password string) (*models.User, error) {
	if (username == "" && email == "") || password == "" {
		return nil, badRequest("missing credentials")
	}
	user := models.User{}
	var result *gorm.DB
	if email != "" {
		result = db.Instance.Limit(1).Find(&user, "email = ?", email)
	} else {
		result = db.Instance.Limit(1).Find(&user, "username = ?", username)
	}
	if result.Error != nil {
		return nil, result.Error
	}
	// Do not reveal whether the account exists
	if result.RowsAffected != 1 || !user.CheckPassword(password) {
		return nil, badRequest("wrong credentials")
	}
	return &user, nil
}

// ChangePassword swaps the password after verifying the old one
func ChangePassword(user *models.User, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" || oldPassword == newPassword {
		return badRequest("missing or identical passwords")
	}
	if !user.CheckPassword(oldPassword) {
		return invalidValue("wrong password")
	}
	user.SetPassword(newPassword)
	return db.Instance.Save(user).Error
}

// DeleteUser cascades over every album the user owns, then removes the
// remaining memberships and the account itself. Each album cascade runs
// in its own transaction; a failure mid-way leaves earlier albums gone
// but never a partially deleted album.
func DeleteUser(user *models.User) error {
	var owned []models.AlbumUser
	err := db.Instance.Where("user_id = ? and is_owner = 1", user.ID).Find(&owned).Error
	if err != nil {
		return err
	}
	for _, membership := range owned {
		var blobPaths []string
		err = db.Instance.Transaction(func(tx *gorm.DB) error {
			blobPaths, err = cascadeDeleteAlbum(tx, membership.AlbumID)
			return err
		})
		if err != nil {
			return err
		}
		deleteBlobs(blobPaths)
	}
	return db.Instance.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.AlbumUser{}, "user_id = ?", user.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, user.ID).Error
	})
}
