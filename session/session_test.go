package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/apitest"
	"github.com/programme-lv/arena/session"
	"github.com/programme-lv/arena/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, client *apiclient.Client) (*session.Session, *session.MemStorage, *session.MemStorage) {
	t.Helper()
	local := session.NewMemStorage()
	transient := session.NewMemStorage()
	return session.New(client, local, transient), local, transient
}

// bobServer answers every login with token "t1" and no user record.
func bobServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"token":"t1"}}`))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestLoginStoresTokenAndRedirects(t *testing.T) {
	ts := bobServer(t)
	sess, local, transient := newSession(t, apiclient.NewClient(ts.URL))

	require.NoError(t, transient.Set(session.RedirectKey, "/contests/7/participate"))

	redirect, err := sess.Login(context.Background(), "bob", "x")
	require.NoError(t, err)

	assert.Equal(t, "/contests/7/participate", redirect)
	assert.Equal(t, "t1", sess.Token())
	assert.True(t, sess.IsAuthenticated())

	stored, ok := local.Get(session.TokenKey)
	require.True(t, ok)
	assert.Equal(t, "t1", stored)

	_, stillThere := transient.Get(session.RedirectKey)
	assert.False(t, stillThere, "redirect path is consumed")

	// token is not a JWT, so the partial user comes from the form
	require.NotNil(t, sess.User())
	assert.Equal(t, "bob", sess.User().Username)
	assert.False(t, sess.IsAdmin())
}

func TestLoginWithoutStoredRedirectDoesNotNavigate(t *testing.T) {
	ts := bobServer(t)
	sess, _, _ := newSession(t, apiclient.NewClient(ts.URL))

	redirect, err := sess.Login(context.Background(), "bob", "x")
	require.NoError(t, err)
	assert.Equal(t, "", redirect)
}

func TestLoginRebuildsUserFromJwtClaims(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	admin := srv.AddUser("alice", "pw", apiclient.RoleAdmin)
	token := srv.Token("alice")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"token":"` + token + `"}}`))
	}))
	defer ts.Close()

	sess, _, _ := newSession(t, apiclient.NewClient(ts.URL))
	_, err := sess.Login(context.Background(), "whatever", "pw")
	require.NoError(t, err)

	user := sess.User()
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, admin.ID, user.ID)
	assert.True(t, sess.IsAdmin())
}

func TestLoginFailures(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("bob", "x", apiclient.RoleUser)

	sess, local, _ := newSession(t, srv.Client())

	_, err := sess.Login(context.Background(), "", "x")
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeValidation))
	assert.Equal(t, 0, srv.Calls("POST /auth/login"), "validation happens before the request")

	_, err = sess.Login(context.Background(), "bob", "nope")
	require.Error(t, err)
	assert.Equal(t, "invalid username or password", err.Error())
	assert.False(t, sess.IsAuthenticated())

	_, ok := local.Get(session.TokenKey)
	assert.False(t, ok)
}

func TestLogoutClearsTokenAndUser(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("bob", "x", apiclient.RoleUser)
	client := srv.Client()

	sess, local, _ := newSession(t, client)
	_, err := sess.Login(context.Background(), "bob", "x")
	require.NoError(t, err)
	require.True(t, sess.IsAuthenticated())

	sess.Logout()

	_, ok := local.Get(session.TokenKey)
	assert.False(t, ok)
	assert.Nil(t, sess.User())
	assert.False(t, sess.IsAuthenticated())
	assert.Empty(t, client.Token())
}

func TestRegisterSignsIn(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	sess, local, _ := newSession(t, srv.Client())
	_, err := sess.Register(context.Background(), "carol", "carol@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, sess.IsAuthenticated())
	_, ok := local.Get(session.TokenKey)
	assert.True(t, ok)

	_, err = sess.Register(context.Background(), "dave", "not-an-email", "secret1")
	require.Error(t, err)
	assert.Equal(t, "email must be a valid email address", err.Error())
}

func TestInitVerifiesStoredToken(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("bob", "x", apiclient.RoleUser)

	t.Run("valid token", func(t *testing.T) {
		sess, local, _ := newSession(t, srv.Client())
		require.NoError(t, local.Set(session.TokenKey, srv.Token("bob")))

		sess.Init(context.Background())

		assert.True(t, sess.IsAuthenticated())
		assert.False(t, sess.Loading())
		assert.Equal(t, "bob", sess.User().Username)
	})

	t.Run("rejected token", func(t *testing.T) {
		sess, local, _ := newSession(t, srv.Client())
		require.NoError(t, local.Set(session.TokenKey, "garbage"))

		sess.Init(context.Background())

		assert.False(t, sess.IsAuthenticated())
		_, ok := local.Get(session.TokenKey)
		assert.False(t, ok)
	})

	t.Run("network failure logs out", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		url := dead.URL
		dead.Close()

		sess, local, _ := newSession(t, apiclient.NewClient(url))
		require.NoError(t, local.Set(session.TokenKey, srv.Token("bob")))

		sess.Init(context.Background())

		assert.False(t, sess.IsAuthenticated())
		_, ok := local.Get(session.TokenKey)
		assert.False(t, ok)
	})

	t.Run("no token", func(t *testing.T) {
		sess, _, _ := newSession(t, srv.Client())
		sess.Init(context.Background())
		assert.False(t, sess.IsAuthenticated())
	})
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.toml")
	fs := session.NewFileStorage(path)

	_, ok := fs.Get(session.TokenKey)
	assert.False(t, ok)

	require.NoError(t, fs.Set(session.TokenKey, "t1"))
	require.NoError(t, fs.Set("other", "v"))

	reopened := session.NewFileStorage(path)
	v, ok := reopened.Get(session.TokenKey)
	require.True(t, ok)
	assert.Equal(t, "t1", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, fs.Remove(session.TokenKey))
	require.NoError(t, fs.Remove("other"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty storage removes its file")

	require.NoError(t, fs.Remove("missing"))
}

func TestFileStorageRecoversFromGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("token = [unterminated"), 0o600))
	fs := session.NewFileStorage(path)

	_, ok := fs.Get(session.TokenKey)
	assert.False(t, ok)

	require.NoError(t, fs.Set(session.TokenKey, "t2"))
	v, ok := session.NewFileStorage(path).Get(session.TokenKey)
	require.True(t, ok)
	assert.Equal(t, "t2", v)

	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o600))
	require.NoError(t, fs.Remove(session.TokenKey))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "an unreadable file is cleared on remove")
}
