package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/firstroundai/interviewd/internal/domain"
)

const extractionSystemPrompt = `You are a resume parser. You extract structured candidate data from resume text and respond with JSON only.`

// buildExtractionPrompt produces the strict JSON-extraction prompt shared by
// every hosted provider. The contract mirrors the profile shape exactly:
// six fields, sentinel for missing scalars, bounded lists.
func buildExtractionPrompt(rawText string) string {
	var b strings.Builder
	b.WriteString("Extract the following fields from the resume text below and return ONLY a JSON object with exactly these keys:\n")
	b.WriteString(`{"name": string, "email": string, "phone": string, "designation": string, "pastCompanies": [string], "skillset": [string]}` + "\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Use \"Not specified\" for any scalar field you cannot find.\n")
	b.WriteString("- Use [] for any list field you cannot find.\n")
	b.WriteString("- pastCompanies: at most 5 entries, most recent first.\n")
	b.WriteString("- skillset: at most 10 entries.\n")
	b.WriteString("- Do not include any text outside the JSON object.\n\n")
	b.WriteString("Resume text:\n")
	b.WriteString(rawText)
	return b.String()
}

// parseProfileResponse extracts the first JSON object from a model response,
// tolerating prose or markdown fences around it. The profile is valid only
// when a real name was extracted; anything less falls through to the next
// strategy.
func parseProfileResponse(resp string) (domain.CandidateProfile, error) {
	idx := strings.IndexByte(resp, '{')
	if idx < 0 {
		return domain.CandidateProfile{}, fmt.Errorf("no JSON object in response")
	}
	var p domain.CandidateProfile
	dec := json.NewDecoder(strings.NewReader(resp[idx:]))
	if err := dec.Decode(&p); err != nil {
		return domain.CandidateProfile{}, fmt.Errorf("decode profile: %w", err)
	}
	name := strings.TrimSpace(p.Name)
	if name == "" || name == domain.NotSpecified {
		return domain.CandidateProfile{}, fmt.Errorf("no name extracted")
	}
	if len(p.PastCompanies) > 5 {
		p.PastCompanies = p.PastCompanies[:5]
	}
	if len(p.Skillset) > 10 {
		p.Skillset = p.Skillset[:10]
	}
	return p, nil
}
