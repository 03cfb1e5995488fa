package main

import (
	"net/http"

	"github.com/myrjola/habitapp/internal/errors"
)

func (app *application) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next)))))
		}
		noAuth = func(next http.Handler) http.Handler {
			return app.recoverPanic(shared(next))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.webAuthnHandler.AuthenticateMiddleware(shared(app.localeContext(next))))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
	)

	mux.Handle("GET /track/{date}", mustSession(http.HandlerFunc(app.trackGET)))
	mux.Handle("POST /track/{date}/variable-meals/{id}/toggle",
		mustSession(http.HandlerFunc(app.trackVariableMealTogglePOST)))
	mux.Handle("POST /track/{date}/fixed-meals/{id}/toggle", mustSession(http.HandlerFunc(app.trackFixedMealTogglePOST)))
	mux.Handle("POST /track/{date}/cheat-meals", mustSession(http.HandlerFunc(app.trackCheatMealAddPOST)))
	mux.Handle("POST /track/{date}/cheat-meals/{index}/delete",
		mustSession(http.HandlerFunc(app.trackCheatMealDeletePOST)))
	mux.Handle("POST /track/{date}/fitness/{activity}/toggle", mustSession(http.HandlerFunc(app.trackFitnessTogglePOST)))

	mux.Handle("GET /progress", mustSession(http.HandlerFunc(app.progressGET)))

	mux.Handle("GET /basketball/stats", mustSession(http.HandlerFunc(app.basketballStatsGET)))
	mux.Handle("GET /basketball/{date}", mustSession(http.HandlerFunc(app.basketballGET)))
	mux.Handle("POST /basketball/{date}/complete", mustSession(http.HandlerFunc(app.basketballCompletePOST)))

	mux.Handle("GET /deep-work/{date}", mustSession(http.HandlerFunc(app.deepWorkGET)))
	mux.Handle("GET /deep-work/{date}/stats", mustSession(http.HandlerFunc(app.deepWorkStatsGET)))
	mux.Handle("POST /deep-work/{date}/tasks", mustSession(http.HandlerFunc(app.deepWorkTaskAddPOST)))
	mux.Handle("POST /deep-work/{date}/tasks/{id}/toggle", mustSession(http.HandlerFunc(app.deepWorkTaskTogglePOST)))
	mux.Handle("POST /deep-work/{date}/tasks/{id}/update", mustSession(http.HandlerFunc(app.deepWorkTaskUpdatePOST)))
	mux.Handle("POST /deep-work/{date}/tasks/{id}/move", mustSession(http.HandlerFunc(app.deepWorkTaskMovePOST)))
	mux.Handle("POST /deep-work/{date}/tasks/{id}/delete", mustSession(http.HandlerFunc(app.deepWorkTaskDeletePOST)))
	mux.Handle("POST /deep-work/{date}/target", mustSession(http.HandlerFunc(app.deepWorkTargetPOST)))
	mux.Handle("POST /deep-work/{date}/minutes", mustSession(http.HandlerFunc(app.deepWorkMinutesPOST)))
	mux.Handle("POST /deep-work/{date}/note", mustSession(http.HandlerFunc(app.deepWorkNotePOST)))

	mux.Handle("GET /groceries", mustSession(http.HandlerFunc(app.groceriesGET)))
	mux.Handle("POST /groceries/{key}/toggle", mustSession(http.HandlerFunc(app.groceryTogglePOST)))
	mux.Handle("POST /groceries/reset", mustSession(http.HandlerFunc(app.groceriesResetPOST)))

	mux.Handle("GET /preferences", mustSession(http.HandlerFunc(app.preferencesGET)))
	mux.Handle("POST /preferences/timezone", mustSession(http.HandlerFunc(app.timezonePOST)))
	mux.Handle("GET /preferences/export-data", mustSession(http.HandlerFunc(app.exportUserDataGET)))
	mux.Handle("POST /preferences/delete-user", mustSession(http.HandlerFunc(app.deleteUserPOST)))

	mux.Handle("POST /api/registration/start", session(http.HandlerFunc(app.beginRegistration)))
	mux.Handle("POST /api/registration/finish", session(http.HandlerFunc(app.finishRegistration)))
	mux.Handle("POST /api/login/start", session(http.HandlerFunc(app.beginLogin)))
	mux.Handle("POST /api/login/finish", session(http.HandlerFunc(app.finishLogin)))
	mux.Handle("POST /api/logout", session(http.HandlerFunc(app.logout)))
	mux.Handle("GET /api/healthy", noAuth(http.HandlerFunc(app.healthy)))
	mux.Handle("POST /api/reports", noAuth(http.HandlerFunc(app.reportPOST)))

	mux.Handle("POST /language", session(http.HandlerFunc(app.setLanguagePOST)))
	mux.Handle("GET /privacy", session(http.HandlerFunc(app.privacy)))
	mux.Handle("GET /{$}", session(http.HandlerFunc(app.home)))

	fileServerHandler, err := app.fileServerHandler(session, noAuth)
	if err != nil {
		return nil, errors.Wrap(err, "file server handler")
	}
	mux.Handle("/", fileServerHandler)

	return mux, nil
}
