package render

import "html/template"

const stepTemplates = `
{{define "header"}}<section class="wizard-step" data-kind="{{.Kind}}"><h2>{{.Title}}</h2>{{end}}
{{define "footer"}}</section>{{end}}

{{define "lodging"}}{{template "header" .}}{{with .Body}}
<label for="hotel_name">Hotel</label>
<input type="text" id="hotel_name" name="hotel_name" value="{{.HotelName}}" autocomplete="off" data-autocomplete="/api/places/autocomplete">
<input type="hidden" name="hotel_place_id" value="{{.PlaceID}}">
<input type="hidden" name="hotel_address" value="{{.Address}}">
<input type="hidden" name="hotel_lat" value="{{.Lat}}">
<input type="hidden" name="hotel_lng" value="{{.Lng}}">
{{if .Address}}<p class="hint">{{.Address}}</p>{{end}}
{{end}}{{template "footer"}}{{end}}

{{define "destination"}}{{template "header" .}}
<label for="destination">Destination</label>
<input type="text" id="destination" name="destination" value="{{.Body}}" required>
{{template "footer"}}{{end}}

{{define "activities"}}{{template "header" .}}
<ol class="rows" data-field="activities">
{{range $i, $row := .Body}}<li><input type="text" name="activities" value="{{$row}}"><button type="submit" name="remove_row" value="{{$i}}" formnovalidate>Remove</button></li>
{{end}}</ol>
<button type="submit" name="add_row" value="activities" formnovalidate>Add activity</button>
{{template "footer"}}{{end}}

{{define "transport"}}{{template "header" .}}{{with .Body}}
<fieldset class="transport-mode">
{{range .Modes}}<label><input type="radio" name="transport_mode" value="{{.Value}}"{{if .Checked}} checked{{end}}> {{.Label}}</label>
{{end}}</fieldset>
<fieldset class="coach-details"{{if not .Coach}} hidden{{end}}>
<label for="departure_address">Departure address</label>
<input type="text" id="departure_address" name="departure_address" value="{{.DepartureAddress}}"{{if not .Coach}} disabled{{end}}>
<label for="travel_hours">Travel time</label>
<input type="number" id="travel_hours" name="travel_hours" min="0" value="{{.Hours}}"{{if not .Coach}} disabled{{end}}> h
<input type="number" id="travel_minutes" name="travel_minutes" min="0" max="59" value="{{.Minutes}}"{{if not .Coach}} disabled{{end}}> min
</fieldset>
{{end}}{{template "footer"}}{{end}}

{{define "trip-type"}}{{template "header" .}}
<fieldset class="toggle">
<label><input type="radio" name="is_day_trip" value="day"{{if .Body}} checked{{end}}> Day trip</label>
<label><input type="radio" name="is_day_trip" value="multi"{{if not .Body}} checked{{end}}> Several days</label>
</fieldset>
{{template "footer"}}{{end}}

{{define "schedule"}}{{template "header" .}}{{with .Body}}
<label for="departure_time">Departure</label>
<input type="time" id="departure_time" name="departure_time" value="{{.Departure}}">
<label for="return_time">Return</label>
<input type="time" id="return_time" name="return_time" value="{{.Return}}">
{{end}}{{template "footer"}}{{end}}

{{define "program"}}{{template "header" .}}
<table class="program"><tbody>
{{range $i, $row := .Body.Rows}}<tr><td><input type="time" name="program_time" value="{{$row.Time}}"></td><td><input type="text" name="program_activity" value="{{$row.Activity}}"></td><td><button type="submit" name="remove_row" value="{{$i}}" formnovalidate>Remove</button></td></tr>
{{end}}</tbody></table>
<button type="submit" name="add_row" value="program" formnovalidate>Add line</button>
<button type="submit" name="action" value="generate_program" formnovalidate>{{if .Body.Generated}}Generate again{{else}}Generate programme{{end}}</button>
{{template "footer"}}{{end}}

{{define "dates"}}{{template "header" .}}{{with .Body}}
<label for="duration_days">Duration (days)</label>
<input type="number" id="duration_days" name="duration_days" min="1" value="{{.Days}}">
<label for="date_start">Start date</label>
<input type="date" id="date_start" name="date_start" value="{{.Start}}">
{{end}}{{template "footer"}}{{end}}

{{define "rating"}}{{template "header" .}}
<label for="star_rating">Stars</label>
<select id="star_rating" name="star_rating">
{{range .Body}}<option value="{{.Value}}"{{if .Checked}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
{{template "footer"}}{{end}}

{{define "meal-plan"}}{{template "header" .}}
<label for="meal_plan">Meal plan</label>
<select id="meal_plan" name="meal_plan">
{{range .Body}}<option value="{{.Value}}"{{if .Checked}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
{{template "footer"}}{{end}}

{{define "pricing"}}{{template "header" .}}
<label for="price">Price per person</label>
<input type="number" id="price" name="price" min="0" step="0.01" value="{{.Body}}" required>
{{template "footer"}}{{end}}

{{define "summary"}}{{template "header" .}}
<table class="summary"><tbody>
{{range .Body}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>
{{end}}</tbody></table>
{{template "footer"}}{{end}}
`

var templates = template.Must(template.New("steps").Parse(stepTemplates))
