package profiles

import "time"

// FileResponse is the outward-facing representation of a file record.
type FileResponse struct {
	FileID       string    `json:"fileId"`
	OriginalName string    `json:"originalName"`
	Encoding     string    `json:"encoding"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	Bucket       string    `json:"bucket"`
	StorageKey   string    `json:"storageKey"`
	Location     string    `json:"location"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// ProfileResponse is the outward-facing representation of a profile.
type ProfileResponse struct {
	ProfileID string         `json:"profileId"`
	UserID    string         `json:"userId"`
	UserName  string         `json:"userName,omitempty"`
	Company   string         `json:"company,omitempty"`
	Files     []FileResponse `json:"files"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func toResponse(p Profile) ProfileResponse {
	files := make([]FileResponse, 0, len(p.Files))
	for _, rec := range p.Files {
		files = append(files, FileResponse{
			FileID:       rec.ID,
			OriginalName: rec.OriginalName,
			Encoding:     rec.Encoding,
			MimeType:     rec.MimeType,
			SizeBytes:    rec.SizeBytes,
			Bucket:       rec.Bucket,
			StorageKey:   rec.StorageKey,
			Location:     rec.Location,
			UploadedAt:   rec.CreatedAt,
		})
	}
	return ProfileResponse{
		ProfileID: p.ID,
		UserID:    p.UserID,
		UserName:  p.UserName,
		Company:   p.Company,
		Files:     files,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
