package models

import "time"

const (
	ExportQueued     = "queued"
	ExportProcessing = "processing"
	ExportDone       = "done"
	ExportFailed     = "failed"

	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

type ExportJob struct {
	JobID     string     `gorm:"column:job_id;primaryKey;size:36" json:"job_id"`
	FormID    string     `gorm:"column:form_id;size:36;index" json:"form_id"`
	OwnerID   uint       `gorm:"column:owner_id;index" json:"-"`
	Format    string     `gorm:"column:format;size:10" json:"format"`
	RangeFrom *time.Time `gorm:"column:range_from" json:"range_from,omitempty"`
	RangeTo   *time.Time `gorm:"column:range_to" json:"range_to,omitempty"`
	Status    string     `gorm:"column:status;size:20" json:"status"`
	FilePath  *string    `gorm:"column:file_path;type:text" json:"-"`
	FileURL   *string    `gorm:"column:file_url;type:text" json:"file_url,omitempty"`
	ErrorMsg  *string    `gorm:"column:error_msg;type:text" json:"error,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ExportJob) TableName() string {
	return "export_jobs"
}
