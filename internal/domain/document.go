package domain

import "time"

// DocumentChecklistItem is one required document for a candidate. UploadedDocumentID is nil
// until the document has been uploaded.
type DocumentChecklistItem struct {
	ID                 int64  `json:"id"`
	CandidateID        int64  `json:"candidate_id"`
	Code               string `json:"code"`
	Name               string `json:"name"`
	IsMandatory        bool   `json:"is_mandatory"`
	UploadedDocumentID *int64 `json:"uploaded_document_id,omitempty"`
}

func (i DocumentChecklistItem) IsUploaded() bool {
	return i.UploadedDocumentID != nil
}

type UploadedDocument struct {
	ID               int64      `json:"id"`
	CandidateID      int64      `json:"candidate_id"`
	ChecklistItemID  int64      `json:"checklist_item_id"`
	Name             string     `json:"name"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	ExpiryNotifiedAt *time.Time `json:"expiry_notified_at,omitempty"`
	UploadedAt       time.Time  `json:"uploaded_at"`
}
