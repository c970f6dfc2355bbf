// Пакет pages — страницы UI.
// Каждая страница — templ.Component, исполняющий встроенный html/template
// (templates/layout.html + шаблон страницы). Строки интерфейса переводятся
// через i18n по контексту запроса.
package pages

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/bigkaa/eduportal/internal/ui/flash"
	"github.com/bigkaa/eduportal/internal/ui/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// Имена страниц = имена файлов в templates/ без расширения.
var pageNames = []string{"index", "register", "login", "dashboard", "catalog", "create", "resources"}

var templates = mustParse()

// Layout — общие данные макета страницы.
type Layout struct {
	// Title — ключ перевода заголовка страницы
	Title string
	// Username — текущий пользователь, пусто для анонимных страниц
	Username string
	// Active — активный пункт навигации
	Active string
	// Flash — одноразовое сообщение о результате предыдущего действия
	Flash *flash.Message
}

// staticFuncs не зависят от запроса.
var staticFuncs = template.FuncMap{
	"key": func(prefix, name string) string {
		return prefix + "." + name
	},
	"pathEscape": url.PathEscape,
	"enrollArgs": enrollArgs,
}

// requestFuncs привязывают перевод к языку запроса.
func requestFuncs(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"t": func(key string) string {
			return i18n.T(ctx, key)
		},
		"tf": func(key string, args ...any) string {
			return i18n.Tf(ctx, key, args...)
		},
		"lang": func() string {
			return i18n.LangFromContext(ctx)
		},
		"flash": func(m *flash.Message) string {
			args := make([]any, len(m.Args))
			for i, a := range m.Args {
				args[i] = a
			}
			return i18n.Tf(ctx, m.Key, args...)
		},
	}
}

func mustParse() map[string]*template.Template {
	// Заглушки request-функций нужны только для разбора шаблонов
	stubs := requestFuncs(context.Background())

	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl := template.Must(template.New(name).
			Funcs(staticFuncs).
			Funcs(stubs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
		out[name] = tmpl
	}
	return out
}

// page возвращает компонент, рендерящий страницу name с данными data.
func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		base, ok := templates[name]
		if !ok {
			return fmt.Errorf("шаблон страницы %q не найден", name)
		}
		tmpl, err := base.Clone()
		if err != nil {
			return fmt.Errorf("ошибка клонирования шаблона %s: %w", name, err)
		}
		if err := tmpl.Funcs(requestFuncs(ctx)).ExecuteTemplate(w, "layout", data); err != nil {
			return fmt.Errorf("ошибка рендеринга страницы %s: %w", name, err)
		}
		return nil
	})
}

// Index — главная страница.
func Index(l Layout) templ.Component {
	l.Title, l.Active = "nav.home", "home"
	return page("index", l)
}

// Register — форма регистрации.
func Register(l Layout) templ.Component {
	l.Title, l.Active = "register.heading", "register"
	return page("register", l)
}

// Login — форма входа.
func Login(l Layout) templ.Component {
	l.Title, l.Active = "login.heading", "login"
	return page("login", l)
}
