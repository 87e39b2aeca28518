package tests

import (
	"context"
	"testing"

	"github.com/artenioreis/loja-caixa/internal/apperr"
	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/model"
	"github.com/artenioreis/loja-caixa/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuth() (service.AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return service.NewAuthService(repo, testSecret, 8, 24), repo
}

func createUser(t *testing.T, svc service.AuthService, name, email, password, role string) *dto.UserResponse {
	t.Helper()
	resp, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Name: name, Email: email, Password: password, Role: role,
	})
	require.NoError(t, err)
	return resp
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newAuth()
	createUser(t, svc, "Maria", "maria@loja.com", "segredo1", model.RoleCashier)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "maria@loja.com", Password: "segredo1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, model.RoleCashier, resp.User.Role)
}

func TestLoginIsCaseInsensitiveOnEmail(t *testing.T) {
	svc, _ := newAuth()
	createUser(t, svc, "Maria", "maria@loja.com", "segredo1", model.RoleCashier)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "  MARIA@loja.com ", Password: "segredo1",
	})
	require.NoError(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuth()
	createUser(t, svc, "Maria", "maria@loja.com", "segredo1", model.RoleCashier)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "maria@loja.com", Password: "errada",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	svc, _ := newAuth()

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "ghost@loja.com", Password: "qualquer",
	})
	require.Error(t, err)
	// Indistinguishable from a wrong password.
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc, repo := newAuth()
	created := createUser(t, svc, "Maria", "maria@loja.com", "segredo1", model.RoleCashier)
	require.NoError(t, repo.SoftDelete(context.Background(), uuid.MustParse(created.ID)))

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "maria@loja.com", Password: "segredo1",
	})
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestRefreshIssuesNewPair(t *testing.T) {
	svc, _ := newAuth()
	createUser(t, svc, "Maria", "maria@loja.com", "segredo1", model.RoleCashier)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "maria@loja.com", Password: "segredo1",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newAuth()
	createUser(t, svc, "Maria", "maria@loja.com", "segredo1", model.RoleCashier)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "maria@loja.com", Password: "segredo1",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), login.AccessToken)
	require.Error(t, err)
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	svc, repo := newAuth()
	created := createUser(t, svc, "Maria", "maria@loja.com", "segredo1", model.RoleCashier)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "maria@loja.com", Password: "segredo1",
	})
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(context.Background(), uuid.MustParse(created.ID)))

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newAuth()
	createUser(t, svc, "Maria", "maria@loja.com", "segredo1", model.RoleCashier)

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Name: "Outra Maria", Email: "maria@loja.com", Password: "outrasenha", Role: model.RoleAdmin,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateUserNeverStoresPlaintext(t *testing.T) {
	svc, repo := newAuth()
	created := createUser(t, svc, "Maria", "maria@loja.com", "segredo1", model.RoleCashier)

	stored, err := repo.FindByID(context.Background(), uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.NotEqual(t, "segredo1", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	svc, repo := newAuth()
	created := createUser(t, svc, "Maria", "maria@loja.com", "segredo1", model.RoleCashier)
	id := uuid.MustParse(created.ID)

	before, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	oldHash := before.PasswordHash

	_, err = svc.UpdateUser(context.Background(), id, dto.UpdateUserRequest{Password: "novasenha"})
	require.NoError(t, err)

	after, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, after.PasswordHash)

	// New password works, old one does not.
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "maria@loja.com", Password: "novasenha"})
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "maria@loja.com", Password: "segredo1"})
	require.Error(t, err)
}

func TestDeactivateSelfForbidden(t *testing.T) {
	svc, _ := newAuth()
	created := createUser(t, svc, "Admin", "admin@loja.com", "segredo1", model.RoleAdmin)
	id := uuid.MustParse(created.ID)

	err := svc.DeactivateUser(context.Background(), id, id)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeactivateAndReactivateUser(t *testing.T) {
	svc, _ := newAuth()
	admin := createUser(t, svc, "Admin", "admin@loja.com", "segredo1", model.RoleAdmin)
	maria := createUser(t, svc, "Maria", "maria@loja.com", "segredo1", model.RoleCashier)

	adminID := uuid.MustParse(admin.ID)
	mariaID := uuid.MustParse(maria.ID)

	require.NoError(t, svc.DeactivateUser(context.Background(), adminID, mariaID))

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "maria@loja.com", Password: "segredo1"})
	require.Error(t, err)

	require.NoError(t, svc.ReactivateUser(context.Background(), mariaID))
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "maria@loja.com", Password: "segredo1"})
	require.NoError(t, err)
}
