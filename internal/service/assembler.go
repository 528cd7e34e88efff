package service

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
)

// FormAssembler превращает вложенный документ формы в последовательность
// идемпотентных upsert-операций над реляционными таблицами.
// Все операции одного вызова Apply выполняются внутри переданной транзакции;
// любая ошибка откатывает документ целиком.
type FormAssembler struct{}

// NewFormAssembler создает новый ассемблер форм
func NewFormAssembler() *FormAssembler {
	return &FormAssembler{}
}

// Apply применяет документ к живым строкам формы внутри транзакции tx.
// existingImages - множество проверенных id изображений: неизвестные ссылки
// деградируют до "без изображения" вместо отказа всей операции.
func (a *FormAssembler) Apply(tx *gorm.DB, form *entity.Form, doc *FormDocument, existingImages map[uint]bool) error {
	if err := a.applyFormFields(tx, form, doc); err != nil {
		return err
	}

	// seq_order → section.ID, для привязки правил ветвления
	sectionIDs := make(map[int]uint, len(doc.Sections))

	for _, sd := range doc.Sections {
		section, err := a.upsertSection(tx, form.ID, &sd)
		if err != nil {
			return err
		}
		sectionIDs[sd.SeqOrder] = section.ID

		for _, id := range sd.Items {
			item, err := a.upsertItem(tx, form.ID, section.ID, &id)
			if err != nil {
				return err
			}
			for _, qd := range id.AllQuestions() {
				if err := a.applyQuestion(tx, item.ID, &qd, existingImages); err != nil {
					return err
				}
			}
		}
	}

	return a.replaceNavigationRules(tx, form.ID, doc.NavigationRules, sectionIDs)
}

// applyFormFields обновляет скалярные поля формы из документа
func (a *FormAssembler) applyFormFields(tx *gorm.DB, form *entity.Form, doc *FormDocument) error {
	form.Title = doc.Title
	form.Description = doc.Description
	if doc.IsPublic != nil {
		form.IsPublic = *doc.IsPublic
	}
	if doc.IsQuiz != nil {
		form.IsQuiz = *doc.IsQuiz
	}
	if doc.CategoryID != nil {
		form.CategoryID = doc.CategoryID
	}
	if doc.Settings != nil {
		if doc.Settings.EmailUpdatesEnabled != nil {
			form.EmailUpdatesEnabled = *doc.Settings.EmailUpdatesEnabled
		}
		if doc.Settings.UpdateWindowHours != nil {
			form.UpdateWindowHours = *doc.Settings.UpdateWindowHours
		}
	}
	if err := tx.Save(form).Error; err != nil {
		return fmt.Errorf("update form #%d failed: %w", form.ID, err)
	}
	return nil
}

// upsertSection применяет раздел по ключу (form_id, seq_order).
// seq_order - стабильная идентичность: при конфликте перезаписываются
// title/description, перестановка разделов требует повторной отправки
// всех разделов с новым порядком.
func (a *FormAssembler) upsertSection(tx *gorm.DB, formID uint, sd *SectionDocument) (*entity.Section, error) {
	section := entity.Section{
		FormID:      formID,
		Title:       sd.Title,
		Description: sd.Description,
		SeqOrder:    sd.SeqOrder,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "form_id"}, {Name: "seq_order"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "updated_at"}),
	}).Create(&section).Error
	if err != nil {
		return nil, fmt.Errorf("upsert section seq=%d failed: %w", sd.SeqOrder, err)
	}
	if section.ID == 0 {
		// Конфликтный путь без RETURNING - добираем id существующей строки
		if err := tx.Where("form_id = ? AND seq_order = ?", formID, sd.SeqOrder).
			First(&section).Error; err != nil {
			return nil, fmt.Errorf("reload section seq=%d failed: %w", sd.SeqOrder, err)
		}
	}
	return &section, nil
}

// upsertItem применяет элемент по ключу (form_id, title).
// Title - стабильная идентичность элемента; kind, description и привязка
// к разделу перезаписываются при конфликте.
func (a *FormAssembler) upsertItem(tx *gorm.DB, formID, sectionID uint, id *ItemDocument) (*entity.Item, error) {
	kind := id.Kind
	if kind == "" {
		kind = entity.ItemKindQuestion
	}
	item := entity.Item{
		FormID:      formID,
		SectionID:   sectionID,
		Title:       id.Title,
		Description: id.Description,
		Kind:        kind,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "form_id"}, {Name: "title"}},
		DoUpdates: clause.AssignmentColumns([]string{"section_id", "description", "kind", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		return nil, fmt.Errorf("upsert item %q failed: %w", id.Title, err)
	}
	if item.ID == 0 {
		if err := tx.Where("form_id = ? AND title = ?", formID, id.Title).
			First(&item).Error; err != nil {
			return nil, fmt.Errorf("reload item %q failed: %w", id.Title, err)
		}
	}
	return &item, nil
}

// applyQuestion применяет вопрос элемента: find-or-create по ключу
// (item_id, kind, required). Совпавший вопрос переиспользуется, чтобы не
// осиротить его варианты и оценивание при повторной отправке неизмененного
// вопроса; иначе создается новая строка вопроса плюс join-запись.
func (a *FormAssembler) applyQuestion(tx *gorm.DB, itemID uint, qd *QuestionDocument, existingImages map[uint]bool) error {
	var question entity.Question
	err := tx.Joins("JOIN item_questions ON item_questions.question_id = questions.id").
		Where("item_questions.item_id = ? AND questions.kind = ? AND questions.required = ?",
			itemID, qd.Kind, qd.Required).
		First(&question).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup question for item #%d failed: %w", itemID, err)
		}
		question = entity.Question{Kind: qd.Kind, Required: qd.Required}
		if err := tx.Create(&question).Error; err != nil {
			return fmt.Errorf("create question for item #%d failed: %w", itemID, err)
		}
		if err := tx.Create(&entity.ItemQuestion{ItemID: itemID, QuestionID: question.ID}).Error; err != nil {
			return fmt.Errorf("link question #%d to item #%d failed: %w", question.ID, itemID, err)
		}
	}

	if err := a.replaceOptions(tx, &question, qd.Options, existingImages); err != nil {
		return err
	}
	return a.replaceGrading(tx, &question, qd.Grading)
}

// replaceOptions полностью заменяет варианты вопроса (delete-all-then-reinsert).
// У вариантов нет внешней стабильной идентичности, безопасной для upsert,
// поэтому diff не делается намеренно.
func (a *FormAssembler) replaceOptions(tx *gorm.DB, question *entity.Question, docs []OptionDocument, existingImages map[uint]bool) error {
	if err := tx.Where("question_id = ?", question.ID).Delete(&entity.Option{}).Error; err != nil {
		return fmt.Errorf("delete options of question #%d failed: %w", question.ID, err)
	}
	if len(docs) == 0 {
		return nil
	}

	options := make([]entity.Option, 0, len(docs))
	for _, od := range docs {
		gotoAction := od.GotoAction
		if gotoAction == "" {
			gotoAction = entity.GotoActionNext
		}
		option := entity.Option{
			QuestionID: question.ID,
			Value:      od.Value,
			IsOther:    od.IsOther,
			GotoAction: gotoAction,
		}
		// Неизвестная ссылка на изображение деградирует до "без изображения"
		if od.ImageID != nil && existingImages[*od.ImageID] {
			option.ImageID = od.ImageID
		} else if od.ImageID != nil {
			log.Printf("[FormAssembler] Изображение #%d не найдено, вариант сохранен без изображения", *od.ImageID)
		}
		options = append(options, option)
	}

	if err := tx.Create(&options).Error; err != nil {
		return fmt.Errorf("insert options of question #%d failed: %w", question.ID, err)
	}
	return nil
}

// replaceGrading вставляет свежую конфигурацию оценивания и перенаправляет
// ссылку вопроса. Предыдущая запись оценивания удаляется в той же
// транзакции - осиротевшие строки не накапливаются.
func (a *FormAssembler) replaceGrading(tx *gorm.DB, question *entity.Question, gd *GradingDocument) error {
	oldGradingID := question.GradingID

	if gd == nil {
		if oldGradingID == nil {
			return nil
		}
		if err := tx.Model(question).Update("grading_id", nil).Error; err != nil {
			return fmt.Errorf("clear grading of question #%d failed: %w", question.ID, err)
		}
		return a.deleteGrading(tx, *oldGradingID)
	}

	grading := entity.Grading{
		Points:          gd.Points,
		RightFeedback:   gd.RightFeedback,
		WrongFeedback:   gd.WrongFeedback,
		GeneralFeedback: gd.GeneralFeedback,
		AnswerKey:       gd.AnswerKey,
		AutoFeedback:    gd.AutoFeedback,
	}
	if err := tx.Create(&grading).Error; err != nil {
		return fmt.Errorf("create grading for question #%d failed: %w", question.ID, err)
	}
	if err := tx.Model(question).Update("grading_id", grading.ID).Error; err != nil {
		return fmt.Errorf("repoint grading of question #%d failed: %w", question.ID, err)
	}
	question.GradingID = &grading.ID

	if oldGradingID != nil {
		return a.deleteGrading(tx, *oldGradingID)
	}
	return nil
}

func (a *FormAssembler) deleteGrading(tx *gorm.DB, gradingID uint) error {
	if err := tx.Delete(&entity.Grading{}, gradingID).Error; err != nil {
		return fmt.Errorf("delete superseded grading #%d failed: %w", gradingID, err)
	}
	return nil
}

// replaceNavigationRules полностью заменяет правила ветвления формы.
// Разделы в документе адресуются по seq_order и здесь переводятся в id.
func (a *FormAssembler) replaceNavigationRules(tx *gorm.DB, formID uint, docs []NavRuleDocument, sectionIDs map[int]uint) error {
	if err := tx.Where("form_id = ?", formID).Delete(&entity.NavigationRule{}).Error; err != nil {
		return fmt.Errorf("delete navigation rules of form #%d failed: %w", formID, err)
	}
	if len(docs) == 0 {
		return nil
	}

	rules := make([]entity.NavigationRule, 0, len(docs))
	for _, rd := range docs {
		rules = append(rules, entity.NavigationRule{
			FormID:          formID,
			SectionID:       sectionIDs[rd.SectionSeq],
			Condition:       rd.Condition,
			TargetSectionID: sectionIDs[rd.TargetSectionSeq],
		})
	}
	if err := tx.Create(&rules).Error; err != nil {
		return fmt.Errorf("insert navigation rules of form #%d failed: %w", formID, err)
	}
	return nil
}
