package doctor

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/repository"
	apperrors "github.com/jwalitptl/clinica-api/pkg/errors"
	"github.com/jwalitptl/clinica-api/pkg/security"
)

var tempPasswordFormat = regexp.MustCompile(`^Clave\d{4}$`)

type fakeDoctorRepo struct {
	doctors    map[uuid.UUID]*model.Doctor
	users      map[uuid.UUID]*model.User
	hasStudies map[uuid.UUID]bool
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{
		doctors:    make(map[uuid.UUID]*model.Doctor),
		users:      make(map[uuid.UUID]*model.User),
		hasStudies: make(map[uuid.UUID]bool),
	}
}

func (r *fakeDoctorRepo) CreateWithUser(ctx context.Context, user *model.User, doctor *model.Doctor) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	doctor.UserID = user.ID
	userCp := *user
	r.users[userCp.ID] = &userCp
	cp := *doctor
	r.doctors[cp.ID] = &cp
	return nil
}

func (r *fakeDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	if u, ok := r.users[d.UserID]; ok {
		cp.Email = u.Email
	}
	return &cp, nil
}

func (r *fakeDoctorRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	for _, d := range r.doctors {
		if d.UserID == userID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDoctorRepo) List(ctx context.Context) ([]*model.Doctor, error) {
	out := make([]*model.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeDoctorRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	d, ok := r.doctors[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Name = name
	return nil
}

func (r *fakeDoctorRepo) DeleteWithUser(ctx context.Context, id uuid.UUID) error {
	d, ok := r.doctors[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.hasStudies[id] {
		return repository.ErrConflict
	}
	delete(r.users, d.UserID)
	delete(r.doctors, id)
	return nil
}

type fakeUserRepo struct {
	doctors *fakeDoctorRepo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (r *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.doctors.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.doctors.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, passwordChanged bool) error {
	u, ok := r.doctors.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordChanged = passwordChanged
	return nil
}

func (r *fakeUserRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	u, ok := r.doctors.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Email = email
	return nil
}

type fakeNotifier struct {
	sent []string
	fail bool
}

func (n *fakeNotifier) SendTempPassword(ctx context.Context, to, name, password string) error {
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, to+":"+password)
	return nil
}

func newTestService() (*Service, *fakeDoctorRepo, *fakeNotifier, security.PasswordHasher) {
	doctors := newFakeDoctorRepo()
	users := &fakeUserRepo{doctors: doctors}
	notifier := &fakeNotifier{}
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	return NewService(doctors, users, hasher, notifier), doctors, notifier, hasher
}

func TestCreateDoctorIssuesTempPassword(t *testing.T) {
	svc, doctors, notifier, hasher := newTestService()

	resp, err := svc.Create(context.Background(), &model.CreateDoctorRequest{
		Name:  "Dr. House",
		Email: "house@example.com",
	})
	require.NoError(t, err)
	assert.Regexp(t, tempPasswordFormat, resp.TempPassword)
	assert.Equal(t, "house@example.com", resp.Email)

	user, ok := doctors.users[resp.UserID]
	require.True(t, ok)
	assert.Equal(t, model.RoleDoctor, user.Role)
	assert.False(t, user.PasswordChanged)
	assert.True(t, hasher.Verify(resp.TempPassword, user.PasswordHash))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "house@example.com:"+resp.TempPassword, notifier.sent[0])
}

func TestCreateDoctorNotifierFailureIsNotFatal(t *testing.T) {
	svc, _, notifier, _ := newTestService()
	notifier.fail = true

	resp, err := svc.Create(context.Background(), &model.CreateDoctorRequest{
		Name:  "Dr. House",
		Email: "house@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.TempPassword)
}

func TestCreateDoctorEmailConflict(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), &model.CreateDoctorRequest{
		Name:  "Dr. House",
		Email: "house@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.CreateDoctorRequest{
		Name:  "Dr. Wilson",
		Email: "house@example.com",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestDeleteDoctorRemovesUser(t *testing.T) {
	svc, doctors, _, _ := newTestService()

	resp, err := svc.Create(context.Background(), &model.CreateDoctorRequest{
		Name:  "Dr. House",
		Email: "house@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), resp.ID))
	assert.Empty(t, doctors.doctors)
	assert.Empty(t, doctors.users)
}

func TestDeleteDoctorWithStudies(t *testing.T) {
	svc, doctors, _, _ := newTestService()

	resp, err := svc.Create(context.Background(), &model.CreateDoctorRequest{
		Name:  "Dr. House",
		Email: "house@example.com",
	})
	require.NoError(t, err)
	doctors.hasStudies[resp.ID] = true

	err = svc.Delete(context.Background(), resp.ID)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestDeleteUnknownDoctor(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.Delete(context.Background(), uuid.New())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestResetPassword(t *testing.T) {
	svc, doctors, notifier, hasher := newTestService()

	created, err := svc.Create(context.Background(), &model.CreateDoctorRequest{
		Name:  "Dr. House",
		Email: "house@example.com",
	})
	require.NoError(t, err)

	// Simulate the doctor having completed the mandatory change
	doctors.users[created.UserID].PasswordChanged = true

	reset, err := svc.ResetPassword(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Regexp(t, tempPasswordFormat, reset.TempPassword)

	user := doctors.users[created.UserID]
	assert.False(t, user.PasswordChanged, "reset must force another mandatory change")
	assert.True(t, hasher.Verify(reset.TempPassword, user.PasswordHash))
	assert.Len(t, notifier.sent, 2)
}
