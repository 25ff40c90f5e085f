package wizard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

// answered returns a state parked on step with every earlier step validated.
func answered(t *testing.T, step int) *State {
	t.Helper()
	s := NewState()
	answers := []string{"Ana Silva", "ana@x.com", "11912345678", "Empresário", "Acme"}
	for i := 0; i < step; i++ {
		var out Outcome
		if q, _ := QuestionAt(i); q.IsRadio() {
			var err error
			out, err = s.Select(answers[i])
			require.NoError(t, err)
		} else {
			require.NoError(t, s.Input(answers[i]))
			out = s.Advance()
		}
		require.Equal(t, OutcomeContinue, out.Kind, "step %d", i)
		if out.NeedsCreate {
			s.LeadID = "lead-1"
			s.Create = Created
		}
		s.MoveTo(out.Next)
	}
	return s
}

func TestAdvanceInvalidKeepsStepAndSetsError(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Input("Ana"))

	out := s.Advance()

	assert.Equal(t, OutcomeInvalid, out.Kind)
	assert.Equal(t, 0, s.Step)
	assert.Equal(t, "Digite seu nome completo.", s.Errors[FieldName])
	assert.Empty(t, s.Completed)

	require.NoError(t, s.Input("Ana Silva"))
	assert.NotContains(t, s.Errors, FieldName)
}

func TestAdvanceWhatsAppNeedsCreateOnlyWithoutLead(t *testing.T) {
	s := answered(t, StepWhatsApp)
	require.NoError(t, s.Input("(11) 9 1234-5678"))

	out := s.Advance()
	assert.Equal(t, Outcome{Kind: OutcomeContinue, Next: StepProfile, NeedsCreate: true}, out)

	s.LeadID = "lead-1"
	out = s.Advance()
	assert.False(t, out.NeedsCreate)
}

func TestProfileBranching(t *testing.T) {
	cases := []struct {
		profile entity.ProfileCategory
		want    Outcome
	}{
		{entity.ProfileOwner, Outcome{Kind: OutcomeContinue, Next: StepCompany}},
		{entity.ProfileDirector, Outcome{Kind: OutcomeContinue, Next: StepCompany}},
		{entity.ProfileStaff, Outcome{Kind: OutcomeCompleteEarly}},
		{entity.ProfileStudent, Outcome{Kind: OutcomeCompleteEarly}},
		{entity.ProfileOther, Outcome{Kind: OutcomeCompleteEarly}},
	}

	for _, tc := range cases {
		t.Run(string(tc.profile), func(t *testing.T) {
			s := answered(t, StepProfile)
			out, err := s.Select(string(tc.profile))
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
			assert.Equal(t, StepProfile, s.Step)
		})
	}
}

func TestSelectOnTextStepIsRejected(t *testing.T) {
	s := NewState()
	_, err := s.Select("Ana Silva")
	assert.ErrorIs(t, err, ErrCannotMove)
}

func TestInputOnRadioStepIsRejected(t *testing.T) {
	s := answered(t, StepProfile)

	assert.ErrorIs(t, s.Input(string(entity.ProfileStudent)), ErrCannotMove)
	assert.Empty(t, s.Values[FieldProfile])

	s = answered(t, LastStep)
	assert.ErrorIs(t, s.Input(string(entity.RevenueAbove20M)), ErrCannotMove)
}

func TestJumpForwardFollowsCurrentAnswer(t *testing.T) {
	t.Run("perfil de saída antecipada não chega à empresa", func(t *testing.T) {
		s := answered(t, LastStep)
		require.NoError(t, s.JumpBackward(StepProfile))
		s.Values[FieldProfile] = string(entity.ProfileStudent)

		assert.ErrorIs(t, s.JumpForward(), ErrCannotMove)
		assert.Equal(t, StepProfile, s.Step)

		out, err := s.Select(string(entity.ProfileStudent))
		require.NoError(t, err)
		assert.Equal(t, OutcomeCompleteEarly, out.Kind)
		assert.Equal(t, entity.Completion{ProfileCategory: entity.ProfileStudent}, s.Completion(out.Kind))
	})

	t.Run("resposta alterada e inválida", func(t *testing.T) {
		s := answered(t, StepProfile)
		require.NoError(t, s.JumpBackward(1))
		require.NoError(t, s.Input("a@b"))

		assert.ErrorIs(t, s.JumpForward(), ErrCannotMove)
		assert.Equal(t, 1, s.Step)
	})

	t.Run("WhatsApp sem lead criado", func(t *testing.T) {
		s := answered(t, StepCompany)
		s.LeadID = ""
		require.NoError(t, s.JumpBackward(StepWhatsApp))

		assert.ErrorIs(t, s.JumpForward(), ErrCannotMove)
	})
}

func TestCompletionRejectsCompanyForEarlyProfiles(t *testing.T) {
	c := entity.Completion{
		ProfileCategory: entity.ProfileStudent,
		Company:         "Acme",
		RevenueBracket:  entity.RevenueAbove20M,
	}
	assert.ErrorIs(t, c.Validate(), entity.ErrInconsistentLead)
}

func TestLastStepCompletesAtEnd(t *testing.T) {
	s := answered(t, LastStep)

	out, err := s.Select(string(entity.Revenue1MTo5M))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleteAtEnd, out.Kind)

	c := s.Completion(out.Kind)
	assert.Equal(t, entity.Completion{
		ProfileCategory: entity.ProfileOwner,
		Company:         "Acme",
		RevenueBracket:  entity.Revenue1MTo5M,
	}, c)
	assert.NoError(t, c.Validate())
}

func TestEarlyCompletionCarriesOnlyProfile(t *testing.T) {
	s := answered(t, StepProfile)
	s.Values[FieldCompany] = "stale"

	out, err := s.Select(string(entity.ProfileStudent))
	require.NoError(t, err)

	c := s.Completion(out.Kind)
	assert.Equal(t, entity.Completion{ProfileCategory: entity.ProfileStudent}, c)
	assert.True(t, c.EarlyExit())
}

func TestNavigation(t *testing.T) {
	s := answered(t, StepProfile)

	assert.ErrorIs(t, s.JumpForward(), ErrCannotMove)

	require.NoError(t, s.Retreat())
	assert.Equal(t, StepWhatsApp, s.Step)
	assert.ErrorIs(t, s.JumpForward(), ErrCannotMove, "step 3 was never validated")

	require.NoError(t, s.Retreat())
	require.NoError(t, s.JumpForward())
	assert.Equal(t, StepWhatsApp, s.Step)

	require.NoError(t, s.JumpBackward(0))
	assert.Equal(t, 0, s.Step)
	assert.ErrorIs(t, s.Retreat(), ErrCannotMove)
	assert.ErrorIs(t, s.JumpBackward(0), ErrCannotMove)

	require.NoError(t, s.JumpForward())
	require.NoError(t, s.JumpForward())
	assert.Equal(t, StepWhatsApp, s.Step)
	assert.ErrorIs(t, s.JumpBackward(4), ErrCannotMove)
}

func TestClosedStateRefusesChanges(t *testing.T) {
	s := answered(t, StepProfile)
	s.Finalize = Finalizing

	assert.ErrorIs(t, s.Input("x"), ErrClosed)
	assert.ErrorIs(t, s.Retreat(), ErrClosed)
	assert.ErrorIs(t, s.JumpForward(), ErrClosed)
	assert.ErrorIs(t, s.JumpBackward(0), ErrClosed)
	assert.Equal(t, OutcomeClosed, s.Advance().Kind)

	out, err := s.Select("Outros")
	require.NoError(t, err)
	assert.Equal(t, OutcomeClosed, out.Kind)
}

func TestLabelUsesFirstName(t *testing.T) {
	s := NewState()
	assert.Equal(t, "Qual é o seu nome completo?", s.Label())

	s = answered(t, 1)
	assert.Equal(t, "Ana, qual é seu melhor e-mail?", s.Label())

	s = answered(t, StepWhatsApp)
	assert.Equal(t, "Qual é o seu WhatsApp?", s.Label())

	s = answered(t, StepCompany)
	assert.Equal(t, "Ana, qual o nome da sua empresa ou da empresa que você atua?", s.Label())
}

func TestStateSurvivesJSON(t *testing.T) {
	s := answered(t, StepProfile)

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var back State
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, s, &back)
	assert.False(t, back.Closed())

	var empty State
	require.NoError(t, json.Unmarshal([]byte(`{"step":0}`), &empty))
	assert.False(t, empty.Closed())
	require.NoError(t, empty.Input("Ana Silva"))
}

func TestLeadUsesDigits(t *testing.T) {
	s := answered(t, StepWhatsApp)
	require.NoError(t, s.Input("(11) 9 1234-5678"))

	assert.Equal(t, &entity.Lead{Name: "Ana Silva", Email: "ana@x.com", WhatsApp: "11912345678"}, s.Lead())
}
