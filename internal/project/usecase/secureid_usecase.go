package usecase

import (
	"context"

	"edwin/internal/project/domain/model"
	"edwin/internal/project/domain/repository"
	apperrors "edwin/internal/shared/errors"
	"edwin/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxSecretField = 2000

// SecureIDUsecase stores project credentials encrypted at rest.
type SecureIDUsecase struct {
	secureIDs repository.SecureIDRepository
	cipher    repository.Cipher
	access    ProjectAccess
	log       logger.Logger
}

// NewSecureIDUsecase wires the secure id usecase.
func NewSecureIDUsecase(secureIDs repository.SecureIDRepository, cipher repository.Cipher, access ProjectAccess, log logger.Logger) *SecureIDUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SecureIDUsecase{secureIDs: secureIDs, cipher: cipher, access: access, log: log.WithComponent("secure-id")}
}

func validateSecureID(in *model.SecureIDInput) error {
	if err := requireText("title", in.Title, maxTitle); err != nil {
		return err
	}
	for field, v := range map[string]*string{
		"username": in.Username,
		"password": in.Password,
		"url":      in.URL,
		"notes":    in.Notes,
	} {
		if err := limitText(field, v, maxSecretField); err != nil {
			return err
		}
	}
	return nil
}

// seal replaces a plaintext password with its ciphertext. Empty passwords
// are stored as empty.
func (uc *SecureIDUsecase) seal(in *model.SecureIDInput) error {
	if in.Password == nil || *in.Password == "" {
		return nil
	}
	sealed, err := uc.cipher.Encrypt(*in.Password)
	if err != nil {
		return apperrors.WrapError(err, "failed to encrypt password")
	}
	in.Password = &sealed
	return nil
}

// Create stores a credential.
func (uc *SecureIDUsecase) Create(ctx context.Context, projectID, userID primitive.ObjectID, in model.SecureIDInput) (model.SecureIDView, error) {
	if _, err := uc.access.Access(ctx, projectID, userID); err != nil {
		return model.SecureIDView{}, err
	}
	if in.Title == nil {
		in.Title = new(string)
	}
	if err := validateSecureID(&in); err != nil {
		return model.SecureIDView{}, err
	}
	if err := uc.seal(&in); err != nil {
		return model.SecureIDView{}, err
	}

	s := &model.SecureID{Project: projectID, Title: *in.Title, CreatedBy: userID}
	if in.Username != nil {
		s.Username = *in.Username
	}
	if in.Password != nil {
		s.Password = *in.Password
	}
	if in.URL != nil {
		s.URL = *in.URL
	}
	if in.Notes != nil {
		s.Notes = *in.Notes
	}
	if err := uc.secureIDs.Create(ctx, s); err != nil {
		return model.SecureIDView{}, err
	}
	return s.View(), nil
}

// List returns a project's credentials without their passwords.
func (uc *SecureIDUsecase) List(ctx context.Context, projectID, userID primitive.ObjectID) ([]model.SecureIDView, error) {
	if _, err := uc.access.Access(ctx, projectID, userID); err != nil {
		return nil, err
	}
	items, err := uc.secureIDs.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]model.SecureIDView, 0, len(items))
	for _, s := range items {
		out = append(out, s.View())
	}
	return out, nil
}

func (uc *SecureIDUsecase) load(ctx context.Context, id, userID primitive.ObjectID) (*model.SecureID, error) {
	s, err := uc.secureIDs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.access.Access(ctx, s.Project, userID); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns one credential without its password.
func (uc *SecureIDUsecase) Get(ctx context.Context, id, userID primitive.ObjectID) (model.SecureIDView, error) {
	s, err := uc.load(ctx, id, userID)
	if err != nil {
		return model.SecureIDView{}, err
	}
	return s.View(), nil
}

// Reveal decrypts the stored password.
func (uc *SecureIDUsecase) Reveal(ctx context.Context, id, userID primitive.ObjectID) (model.Revealed, error) {
	s, err := uc.load(ctx, id, userID)
	if err != nil {
		return model.Revealed{}, err
	}
	if s.Password == "" {
		return model.Revealed{Password: ""}, nil
	}
	plain, err := uc.cipher.Decrypt(s.Password)
	if err != nil {
		uc.log.WithContext(ctx).WithFields(map[string]interface{}{"secure_id": id.Hex()}).Errorf("failed to decrypt secure id: %v", err)
		return model.Revealed{}, apperrors.NewInternalError("failed to decrypt password").WithCause(err)
	}
	uc.log.WithContext(ctx).WithFields(map[string]interface{}{"secure_id": id.Hex()}).Info("secure id revealed")
	return model.Revealed{Password: plain}, nil
}

// Update merges the provided fields, re-encrypting a new password.
func (uc *SecureIDUsecase) Update(ctx context.Context, id, userID primitive.ObjectID, in model.SecureIDInput) (model.SecureIDView, error) {
	if _, err := uc.load(ctx, id, userID); err != nil {
		return model.SecureIDView{}, err
	}
	if err := validateSecureID(&in); err != nil {
		return model.SecureIDView{}, err
	}
	if err := uc.seal(&in); err != nil {
		return model.SecureIDView{}, err
	}
	s, err := uc.secureIDs.Update(ctx, id, in)
	if err != nil {
		return model.SecureIDView{}, err
	}
	return s.View(), nil
}

// Delete removes a credential.
func (uc *SecureIDUsecase) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	if _, err := uc.load(ctx, id, userID); err != nil {
		return err
	}
	return uc.secureIDs.Delete(ctx, id)
}
