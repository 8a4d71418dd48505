package mission

import "testing"

func TestValidateProofAd(t *testing.T) {
	m := &Mission{Type: TypeAd, Duration: 30}

	cases := []struct {
		proof string
		want  bool
	}{
		{`{"duration": 30}`, true},
		{`{"duration": 28}`, true},  // 28 >= 27 (90% of 30)
		{`{"duration": 27}`, true},  // exactly the threshold
		{`{"duration": 25}`, false}, // below 90%
		{`{"duration": 0}`, false},
		{`not json`, false},
		{``, false},
	}
	for _, c := range cases {
		if got := ValidateProof(m, c.proof); got != c.want {
			t.Errorf("ValidateProof(ad, %q) = %v, want %v", c.proof, got, c.want)
		}
	}
}

func TestValidateProofSocial(t *testing.T) {
	m := &Mission{Type: TypeSocial}

	cases := []struct {
		proof string
		want  bool
	}{
		{`{"engagement_id": "e1", "platform": "x"}`, true},
		{`{"engagement_id": "", "platform": "x"}`, false},
		{`{"engagement_id": "e1"}`, false},
		{`{}`, false},
		{``, false},
	}
	for _, c := range cases {
		if got := ValidateProof(m, c.proof); got != c.want {
			t.Errorf("ValidateProof(social, %q) = %v, want %v", c.proof, got, c.want)
		}
	}
}

func TestValidateProofSurvey(t *testing.T) {
	m := &Mission{Type: TypeSurvey}

	if !ValidateProof(m, `{"responses": [{"q1": "yes"}]}`) {
		t.Error("survey with one response must pass")
	}
	if ValidateProof(m, `{"responses": []}`) {
		t.Error("survey with no responses must fail")
	}
	if ValidateProof(m, `{}`) {
		t.Error("survey without responses field must fail")
	}
}

func TestValidateProofUnknownType(t *testing.T) {
	m := &Mission{Type: "video"}

	if !ValidateProof(m, `anything`) {
		t.Error("unknown mission type accepts any non-empty proof")
	}
	if ValidateProof(m, ``) {
		t.Error("empty proof always fails")
	}
}
