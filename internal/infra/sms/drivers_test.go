package sms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"smsnotify/internal/domain/channel"

	"github.com/kavenegar/kavenegar-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMsg = &channel.Message{To: "+15550123", Body: "Your order #7 is ready"}

func TestTwilioDriver_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+15550123", r.PostForm.Get("To"))
		assert.Equal(t, "+15559999", r.PostForm.Get("From"))
		assert.Equal(t, testMsg.Body, r.PostForm.Get("Body"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM42","status":"queued"}`))
	}))
	defer srv.Close()

	d := NewTwilioDriver(srv.Client())
	d.baseURL = srv.URL

	id, err := d.Send(context.Background(), channel.Credentials{
		"account_sid": "AC123",
		"auth_token":  "secret",
		"from":        "+15559999",
	}, testMsg)

	require.NoError(t, err)
	assert.Equal(t, "SM42", id)
}

func TestTwilioDriver_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"The 'To' number is not a valid phone number."}`))
	}))
	defer srv.Close()

	d := NewTwilioDriver(srv.Client())
	d.baseURL = srv.URL

	_, err := d.Send(context.Background(), channel.Credentials{
		"account_sid": "AC123", "auth_token": "secret", "from": "+1",
	}, testMsg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "21211")
}

func TestDrivers_MissingCredentials(t *testing.T) {
	for _, d := range Drivers(0) {
		t.Run(d.Name(), func(t *testing.T) {
			_, err := d.Send(context.Background(), channel.Credentials{}, testMsg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "missing credentials")
		})
	}
}

func TestNexmoDriver_Send(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantID  string
		wantErr string
	}{
		{
			name:   "accepted",
			reply:  `{"message-count":"1","messages":[{"status":"0","message-id":"0A00000123"}]}`,
			wantID: "0A00000123",
		},
		{
			name:    "rejected with 200",
			reply:   `{"message-count":"1","messages":[{"status":"4","error-text":"Bad Credentials"}]}`,
			wantErr: "Bad Credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/sms/json", r.URL.Path)
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "15550123", r.PostForm.Get("to"))
				assert.Equal(t, "key", r.PostForm.Get("api_key"))
				_, _ = w.Write([]byte(tt.reply))
			}))
			defer srv.Close()

			d := NewNexmoDriver(srv.Client())
			d.baseURL = srv.URL

			id, err := d.Send(context.Background(), channel.Credentials{
				"api_key": "key", "api_secret": "secret", "from": "Shop",
			}, testMsg)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestClickatellDriver_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "ck-key", r.Header.Get("Authorization"))

		var payload struct {
			Content string   `json:"content"`
			To      []string `json:"to"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, []string{"+15550123"}, payload.To)

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"messages":[{"apiMessageId":"ck-1","accepted":true,"to":"15550123"}]}`))
	}))
	defer srv.Close()

	d := NewClickatellDriver(srv.Client())
	d.baseURL = srv.URL

	id, err := d.Send(context.Background(), channel.Credentials{"api_key": "ck-key"}, testMsg)
	require.NoError(t, err)
	assert.Equal(t, "ck-1", id)
}

func TestPlivoDriver_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/Account/MA1/Message/", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "+15559999", payload["src"])
		assert.Equal(t, "+15550123", payload["dst"])

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"api_id":"a","message":"message(s) queued","message_uuid":["uuid-1"]}`))
	}))
	defer srv.Close()

	d := NewPlivoDriver(srv.Client())
	d.baseURL = srv.URL

	id, err := d.Send(context.Background(), channel.Credentials{
		"auth_id": "MA1", "auth_token": "tok", "from": "+15559999",
	}, testMsg)
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", id)
}

type fakeKavenegar struct {
	gotSender   string
	gotReceptor []string
	err         error
}

func (f *fakeKavenegar) Send(sender string, receptor []string, message string, params *kavenegar.MessageSendParam) ([]kavenegar.Message, error) {
	f.gotSender = sender
	f.gotReceptor = receptor
	if f.err != nil {
		return nil, f.err
	}
	return []kavenegar.Message{{MessageID: 8792343}}, nil
}

func TestKavenegarDriver_Send(t *testing.T) {
	fake := &fakeKavenegar{}
	d := NewKavenegarDriver()
	d.newSender = func(apiKey string) kavenegarSender {
		assert.Equal(t, "kv-key", apiKey)
		return fake
	}

	creds := channel.Credentials{"api_key": "kv-key", "sender": "10008663"}
	id, err := d.Send(context.Background(), creds, testMsg)
	require.NoError(t, err)
	assert.Equal(t, "8792343", id)
	assert.Equal(t, "10008663", fake.gotSender)
	assert.Equal(t, []string{"+15550123"}, fake.gotReceptor)

	fake.err = errors.New("connection refused")
	_, err = d.Send(context.Background(), creds, testMsg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDrivers_Names(t *testing.T) {
	var names []string
	for _, d := range Drivers(0) {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{"twilio", "nexmo", "clickatell", "plivo", "kavenegar"}, names)
}
