package domain

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"reflect"
	"roommate_service/errors"
	"strings"
	"time"
)

const lifestylePrefix = "lifestyle."

// ListingInput is the create payload after normalization. Owner fields, likes
// and likedBy are never read from the client.
type ListingInput struct {
	Title        string    `json:"title" validate:"required"`
	Location     string    `json:"location" validate:"required"`
	Description  string    `json:"description"`
	RentAmount   float64   `json:"rentAmount" validate:"gte=0"`
	RoomType     RoomType  `json:"roomType" validate:"omitempty,oneof=Single Shared Master Studio"`
	Lifestyle    Lifestyle `json:"lifestyle"`
	ContactInfo  string    `json:"contactInfo"`
	Availability bool      `json:"availability"`
	ImageURL     string    `json:"imageUrl" validate:"omitempty,url"`
}

type LifestylePatch struct {
	Pets      *bool `json:"pets"`
	Smoking   *bool `json:"smoking"`
	NightOwl  *bool `json:"nightOwl"`
	EarlyBird *bool `json:"earlyBird"`
	Drinking  *bool `json:"drinking"`
	Visitors  *bool `json:"visitors"`
}

// ListingPatch holds the fields an update may set; nil means "not provided".
type ListingPatch struct {
	Title        *string         `json:"title" validate:"omitempty,min=1"`
	Location     *string         `json:"location" validate:"omitempty,min=1"`
	Description  *string         `json:"description"`
	RentAmount   *float64        `json:"rentAmount" validate:"omitempty,gte=0"`
	RoomType     *RoomType       `json:"roomType" validate:"omitempty,oneof=Single Shared Master Studio"`
	Lifestyle    *LifestylePatch `json:"lifestyle"`
	ContactInfo  *string         `json:"contactInfo"`
	Availability *bool           `json:"availability"`
	ImageURL     *string         `json:"imageUrl"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseListingInput turns a decoded JSON body (or a form submitted as JSON,
// with "on" checkboxes and flat "lifestyle.pets" keys) into a validated input.
func ParseListingInput(raw map[string]interface{}) (*ListingInput, error) {
	var input ListingInput
	if err := decodeForm(raw, &input); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Location = strings.TrimSpace(input.Location)
	if input.RoomType == "" {
		input.RoomType = Single
	}
	if err := validateStruct(&input); err != nil {
		return nil, err
	}
	return &input, nil
}

// ToListing builds a new listing owned by the given identity.
func (input *ListingInput) ToListing(owner *Identity, now time.Time) *Listing {
	return &Listing{
		Title:        input.Title,
		Location:     input.Location,
		Description:  input.Description,
		RentAmount:   input.RentAmount,
		RoomType:     input.RoomType,
		Lifestyle:    input.Lifestyle,
		Availability: input.Availability,
		ImageURL:     input.ImageURL,
		ContactInfo:  input.ContactInfo,
		Email:        owner.Email,
		UserName:     owner.Name,
		Likes:        0,
		LikedBy:      []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ParseListingPatch decodes an update body. Keys outside the listing schema,
// and the protected owner/like fields, are dropped.
func ParseListingPatch(raw map[string]interface{}) (*ListingPatch, error) {
	var patch ListingPatch
	if err := decodeForm(raw, &patch); err != nil {
		return nil, err
	}
	if err := validateStruct(&patch); err != nil {
		return nil, err
	}
	// an empty imageUrl clears the image
	if patch.ImageURL != nil {
		if err := validateField("imageUrl", *patch.ImageURL, "omitempty,url"); err != nil {
			return nil, err
		}
	}
	return &patch, nil
}

// Fields returns the $set document for the patch. Lifestyle flags are set one
// by one so omitted flags keep their stored value.
func (p *ListingPatch) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if p.Title != nil {
		fields["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Location != nil {
		fields["location"] = strings.TrimSpace(*p.Location)
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.RentAmount != nil {
		fields["rentAmount"] = *p.RentAmount
	}
	if p.RoomType != nil {
		fields["roomType"] = *p.RoomType
	}
	if p.ContactInfo != nil {
		fields["contactInfo"] = *p.ContactInfo
	}
	if p.Availability != nil {
		fields["availability"] = *p.Availability
	}
	if p.ImageURL != nil {
		fields["imageUrl"] = *p.ImageURL
	}
	if l := p.Lifestyle; l != nil {
		setFlag(fields, "pets", l.Pets)
		setFlag(fields, "smoking", l.Smoking)
		setFlag(fields, "nightOwl", l.NightOwl)
		setFlag(fields, "earlyBird", l.EarlyBird)
		setFlag(fields, "drinking", l.Drinking)
		setFlag(fields, "visitors", l.Visitors)
	}
	return fields
}

func setFlag(fields map[string]interface{}, name string, value *bool) {
	if value != nil {
		fields[lifestylePrefix+name] = *value
	}
}

func decodeForm(raw map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       formBoolHook,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(foldLifestyle(raw)); err != nil {
		return &errors.ValidationError{Message: errors.InvalidRequestFormatError + ": " + err.Error()}
	}
	return nil
}

// foldLifestyle moves flat "lifestyle.x" keys into the nested lifestyle object.
func foldLifestyle(raw map[string]interface{}) map[string]interface{} {
	folded := make(map[string]interface{}, len(raw))
	lifestyle := map[string]interface{}{}
	for key, value := range raw {
		if strings.HasPrefix(key, lifestylePrefix) {
			lifestyle[strings.TrimPrefix(key, lifestylePrefix)] = value
			continue
		}
		folded[key] = value
	}
	if nested, ok := folded["lifestyle"].(map[string]interface{}); ok {
		for key, value := range nested {
			lifestyle[key] = value
		}
	}
	if len(lifestyle) > 0 {
		folded["lifestyle"] = lifestyle
	}
	return folded
}

// formBoolHook accepts the values an HTML checkbox or a hand-written client may send.
func formBoolHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.Bool || from.Kind() != reflect.String {
		return data, nil
	}
	value := strings.ToLower(strings.TrimSpace(reflect.ValueOf(data).String()))
	switch value {
	case "on", "true", "yes", "1":
		return true, nil
	case "", "off", "false", "no", "0":
		return false, nil
	}
	return nil, fmt.Errorf("%q is not a boolean", value)
}

func validateStruct(s interface{}) error {
	return validationError("", validate.Struct(s))
}

func validateField(name string, value interface{}, tag string) error {
	return validationError(name, validate.Var(value, tag))
}

func validationError(field string, err error) error {
	if err == nil {
		return nil
	}
	if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		if field == "" {
			field = fe.Field()
		}
		return &errors.ValidationError{Message: fmt.Sprintf("field '%s' failed validation '%s'", field, fe.Tag())}
	}
	return &errors.ValidationError{Message: err.Error()}
}
