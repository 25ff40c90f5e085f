package mail

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSendNewLead(t *testing.T) {
	d := &fakeDialer{}
	s := NewEmailSenderWithDialer(d, "funil@dsx.com", "vendas@dsx.com")

	err := s.SendNewLead(&entity.Lead{
		ID:              "l1",
		Name:            "Ana <Silva>",
		Email:           "ana@x.com",
		WhatsApp:        "11912345678",
		ProfileCategory: entity.ProfileOwner,
		Company:         "Acme",
		RevenueBracket:  entity.Revenue1MTo5M,
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"vendas@dsx.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"ana@x.com"}, m.GetHeader("Reply-To"))

	var raw bytes.Buffer
	_, err = m.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Acme")
	assert.Contains(t, raw.String(), "Ana &lt;Silva&gt;")
}

func TestSendNewLeadEarlyExitOmitsCompany(t *testing.T) {
	d := &fakeDialer{}
	s := NewEmailSenderWithDialer(d, "funil@dsx.com", "vendas@dsx.com")

	require.NoError(t, s.SendNewLead(&entity.Lead{ID: "l2", Name: "Bia Souza", ProfileCategory: entity.ProfileStudent}))

	var raw bytes.Buffer
	_, err := d.sent[0].WriteTo(&raw)
	require.NoError(t, err)
	assert.NotContains(t, raw.String(), "Empresa")
}

func TestSendNewLeadSMTPError(t *testing.T) {
	s := NewEmailSenderWithDialer(&fakeDialer{err: errors.New("535 auth failed")}, "a@b.com", "c@d.com")
	err := s.SendNewLead(&entity.Lead{Name: "Ana Silva"})
	assert.ErrorContains(t, err, "SMTP")
}
