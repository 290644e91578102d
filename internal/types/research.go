package types

// InfoItem is a search hit about a company (news, culture or hiring).
type InfoItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Question is an interview question source found for a role.
type Question struct {
	Source  string `json:"source"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// CompanyInfo holds the categorised search hits for a company.
type CompanyInfo struct {
	News    []InfoItem `json:"news"`
	Culture []InfoItem `json:"culture"`
	Hiring  []InfoItem `json:"hiring"`
}

// Research is the result of POST /research-company
type Research struct {
	AIBrief            string      `json:"ai_brief"`
	CompanyInfo        CompanyInfo `json:"company_info"`
	InterviewQuestions []Question  `json:"interview_questions"`
	CompanyName        string      `json:"company_name"`
}

// CultureItems returns culture hits followed by hiring hits.
func (r Research) CultureItems() []InfoItem {
	out := make([]InfoItem, 0, len(r.CompanyInfo.Culture)+len(r.CompanyInfo.Hiring))
	out = append(out, r.CompanyInfo.Culture...)
	return append(out, r.CompanyInfo.Hiring...)
}

// ResearchRequest is the body of POST /research-company
type ResearchRequest struct {
	CompanyName string `json:"company_name"`
	JobTitle    string `json:"job_title"`
}
