package models

// FilePart описывает одну часть multipart-запроса, уже выложенную во временный каталог.
// Name приходит от клиента и не является доверенным.
type FilePart struct {
	Name string
	Path string
	Size int64
}

// PersistResult: итог сохранения одной части: либо FinalPath, либо Err.
type PersistResult struct {
	Part      FilePart
	FinalPath string
	Err       error
}

// Saved конструирует успешный результат.
func Saved(part FilePart, finalPath string) PersistResult {
	return PersistResult{Part: part, FinalPath: finalPath}
}

// Failed конструирует неуспешный результат.
func Failed(part FilePart, err error) PersistResult {
	return PersistResult{Part: part, Err: err}
}

func (r PersistResult) Saved() bool {
	return r.Err == nil
}

// UploadOutcome агрегирует результаты одного запроса.
type UploadOutcome struct {
	Results []PersistResult
}

// SuccessCount возвращает количество успешно сохранённых файлов.
func (o UploadOutcome) SuccessCount() int {
	n := 0
	for _, r := range o.Results {
		if r.Saved() {
			n++
		}
	}
	return n
}

func (o UploadOutcome) Total() int {
	return len(o.Results)
}
