package formcatalog

import (
	"errors"
	"strings"
	"time"

	"safety-forms-api/internal/formengine"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	ErrDuplicateCode = errors.New("a form with this code already exists")
	ErrNameRequired  = errors.New("form name is required")
)

type FormCatalogService struct {
	DB *gorm.DB
}

func (s *FormCatalogService) FetchMany(filter FormFilter) ([]*formengine.Form, int64, error) {
	filter.Normalize()

	q := s.DB.Model(&FormTemplate{})
	if c := strings.TrimSpace(filter.Category); c != "" {
		q = q.Where("category = ?", c)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []FormTemplate
	if err := q.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	forms := make([]*formengine.Form, 0, len(rows))
	for i := range rows {
		f, err := rows[i].ToForm()
		if err != nil {
			return nil, 0, err
		}
		forms = append(forms, f)
	}
	return forms, total, nil
}

// Normalize applies the paging defaults: page 1, limit 20, at most 100.
func (f *FormFilter) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
}

func (s *FormCatalogService) load(tx *gorm.DB, id string) (*FormTemplate, error) {
	var rec FormTemplate
	if err := tx.Where("id = ?", strings.TrimSpace(id)).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// FetchOne returns gorm.ErrRecordNotFound for an unknown id.
func (s *FormCatalogService) FetchOne(id string) (*formengine.Form, error) {
	rec, err := s.load(s.DB, id)
	if err != nil {
		return nil, err
	}
	return rec.ToForm()
}

func (s *FormCatalogService) codeTaken(tx *gorm.DB, code string, exceptID string) (bool, error) {
	q := tx.Model(&FormTemplate{}).Where("code = ?", code)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func checkDraft(f *formengine.Form) error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrNameRequired
	}
	return formengine.CheckForm(f)
}

func (s *FormCatalogService) Create(form *formengine.Form, userID uint) (*formengine.Form, error) {
	if form == nil {
		return nil, ErrNameRequired
	}
	if err := checkDraft(form); err != nil {
		return nil, err
	}

	draft := *form
	draft.ID = ""
	draft.IsActive = true

	rec, err := newTemplate(&draft)
	if err != nil {
		return nil, err
	}
	if userID > 0 {
		rec.CreatedBy = &userID
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if rec.Code != nil {
			taken, err := s.codeTaken(tx, *rec.Code, "")
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateCode
			}
		}
		return tx.Create(rec).Error
	})
	if err != nil {
		return nil, err
	}
	return rec.ToForm()
}

func applyPatch(f *formengine.Form, p FormPatch) {
	if p.Code != nil {
		f.Code = strings.TrimSpace(*p.Code)
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.RequiredFor != nil {
		f.RequiredFor = *p.RequiredFor
	}
	if p.Tags != nil {
		f.Tags = *p.Tags
	}
	if p.Metadata != nil {
		f.Metadata = *p.Metadata
	}
	if p.Sections != nil {
		f.Sections = *p.Sections
	}
	if p.IsActive != nil {
		f.IsActive = *p.IsActive
	}
}

func (s *FormCatalogService) Update(id string, patch FormPatch) (*formengine.Form, error) {
	var out *formengine.Form

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		rec, err := s.load(tx, id)
		if err != nil {
			return err
		}
		form, err := rec.ToForm()
		if err != nil {
			return err
		}

		applyPatch(form, patch)
		if patch.Sections != nil || patch.Name != nil {
			if err := checkDraft(form); err != nil {
				return err
			}
		}

		next, err := newTemplate(form)
		if err != nil {
			return err
		}
		next.CreatedBy = rec.CreatedBy

		if next.Code != nil {
			taken, err := s.codeTaken(tx, *next.Code, rec.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateCode
			}
		}

		if err := tx.Save(next).Error; err != nil {
			return err
		}
		out, err = next.ToForm()
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Duplicate copies a form under a fresh id. The copy is active and has no code.
func (s *FormCatalogService) Duplicate(id, newName string, userID uint) (*formengine.Form, error) {
	src, err := s.FetchOne(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(newName)
	if name == "" {
		name = src.Name + " (copia)"
	}

	clone := *src
	clone.ID = ""
	clone.Code = ""
	clone.Name = name
	clone.IsActive = true
	clone.CreatedAt = time.Time{}

	rec, err := newTemplate(&clone)
	if err != nil {
		return nil, err
	}
	if userID > 0 {
		rec.CreatedBy = &userID
	}
	if err := s.DB.Create(rec).Error; err != nil {
		return nil, err
	}
	return rec.ToForm()
}

// Delete deactivates the form; stored submissions keep referring to it.
func (s *FormCatalogService) Delete(id string) error {
	res := s.DB.Model(&FormTemplate{}).
		Where("id = ?", strings.TrimSpace(id)).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *FormCatalogService) ValidateResponses(id string, responses formengine.Responses) (formengine.Errors, error) {
	form, err := s.FetchOne(id)
	if err != nil {
		return nil, err
	}
	return formengine.Validate(form, responses), nil
}
